// Package internal contains helpers shared across the dnp3snoop commands.
package internal

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
)

// NewProgressBar returns a progress bar with standardized options.
func NewProgressBar(size int, message string) *progressbar.ProgressBar {
	return progressbar.NewOptions(size,
		progressbar.OptionSetDescription(message),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("bytes"),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)
}

// Banner - Rule 1 still applies: look cool.
const Banner = `
     ▄▄▄▄  ▄▄▄▄  ▄▄▄▄   ▄▄▄▄
     █   █ █   █ █   █ ▀▄  ▄▀ ▄▄▄▄ ▄▄▄▄   ▄▄▄▄  ▄▄▄▄ ▄▄▄▄
     █   █ █   █ █▄▄▄▀  ▄▀▀▄  █▄▄▄ █   █ █    █ █   █ █   █
     █▄▄▄▀ █   █ █     ▀▄▄▄▄▀ ▄▄▄█ █   █ ▀▄▄▄▄▀ ▀▄▄▄▀ █▄▄▄▀
                                                      █
      watching the wire so you don't have to          ▀

`
