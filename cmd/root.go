// Package cmd implements the dnp3snoop cli with cobra
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nblair2/dnp3snoop/internal"
	"github.com/nblair2/dnp3snoop/internal/config"
	"github.com/nblair2/dnp3snoop/internal/dissect"
)

// ==================================================================
// Flag Vars
// ==================================================================

var (
	configFile string
	port       int
	ctxMax     int
	bufLen     int
	rawDump    bool
	quiet      bool
	verbose    bool
)

// ==================================================================
// Helper Functions
// ==================================================================

// dumpFlags prints the flags the user changed, for --verbose runs.
func dumpFlags(cmd *cobra.Command) {
	fmt.Fprintf(os.Stderr, ">> %s flags:\n", cmd.CommandPath())
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}

		fmt.Fprintf(os.Stderr, "\t%s:    \t%s\n", f.Name, f.Value)
	})
}

// loadConfig merges the optional config file with any flags the user set;
// flags win.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}

	if cmd.Flags().Changed("ctx-max") {
		cfg.CtxMax = ctxMax
	}

	if cmd.Flags().Changed("buf-len") {
		cfg.BufLen = bufLen
	}

	if cmd.Flags().Changed("raw") {
		cfg.Raw = rawDump
	}

	if cmd.Flags().Changed("quiet") {
		cfg.Quiet = quiet
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}

	return cfg, nil
}

// newLogger builds the diagnostics logger; silent unless --verbose.
func newLogger(cfg config.Config) zerolog.Logger {
	if !cfg.Verbose {
		return zerolog.Nop()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).With().Timestamp().Str("app", "dnp3snoop").Logger()
}

func dissectConfig(cfg config.Config) dissect.Config {
	return dissect.Config{
		CtxMax: cfg.CtxMax,
		BufLen: cfg.BufLen,
		Logger: newLogger(cfg),
	}
}

// ==================================================================
// Root
// ==================================================================

var rootCmd = &cobra.Command{
	Use:   "dnp3snoop <source>",
	Short: "dnp3snoop is a streaming DNP3 dissector",
	Long: internal.Banner + `dnp3snoop locates DNP3 link frames inside raw byte streams, reassembles
transport segment series per connection, and prints every link frame,
transport segment and application fragment it sees. Sources: a raw byte
stream ('file'), a stored capture ('pcap'), or the local wire ('live').
`,
	Example: `    Dissect a raw stream captured off a serial tap:
        $ dnp3snoop file channel.bin

    Dissect a stored capture:
        $ dnp3snoop pcap scada.pcap --port 20000

    Watch local DNP3 traffic (needs root):
        $ dnp3snoop live --quiet

    Generate sample poll traffic and dissect it:
        $ dnp3snoop forge --rounds 3 | dnp3snoop file -`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if verbose {
			dumpFlags(cmd)
		}
	},
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute - dnp3snoop.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(fileCmd, pcapCmd, liveCmd, forgeCmd)

	rootCmd.PersistentFlags().
		StringVarP(&configFile, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().
		IntVarP(&port, "port", "p", 20000, "TCP port carrying DNP3")
	rootCmd.PersistentFlags().
		IntVar(&ctxMax, "ctx-max", 16, "max live (src,dst) contexts per stream")
	rootCmd.PersistentFlags().
		IntVar(&bufLen, "buf-len", 4096, "input and reassembly buffer size")
	rootCmd.PersistentFlags().
		BoolVarP(&rawDump, "raw", "r", false, "hex dump raw frame bytes")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "only print application layer events")
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "enable diagnostic logging")
}
