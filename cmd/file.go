package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nblair2/dnp3snoop/internal/dissect"
	"github.com/nblair2/dnp3snoop/internal/output"
)

var fileCmd = &cobra.Command{
	Use:   "file <path|->",
	Short: "Dissect a raw DNP3 byte stream",
	Long: `Reads a file (or stdin with '-') as one raw byte stream with DNP3 link
frames embedded in it, such as a serial line capture, and dissects it as a
single connection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var in io.Reader = os.Stdin
		if args[0] != "-" {
			//nolint:gosec // G304 opening file provided by user
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("error opening stream: %w", err)
			}
			defer f.Close()

			in = f
		}

		printer := output.NewPrinter(os.Stdout)
		printer.Raw = cfg.Raw
		printer.Quiet = cfg.Quiet

		d := dissect.New(printer, dissectConfig(cfg))
		defer d.Finish()

		if _, err := io.Copy(d, in); err != nil {
			return fmt.Errorf("error dissecting stream: %w", err)
		}

		return nil
	},
}
