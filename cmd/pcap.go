package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nblair2/dnp3snoop/internal/capture"
	"github.com/nblair2/dnp3snoop/internal/output"
)

var noProgress bool

var pcapCmd = &cobra.Command{
	Use:   "pcap <file.pcap>",
	Short: "Dissect DNP3 flows in a stored capture",
	Long: `Reads a pcap file and dissects the TCP payload of every DNP3 flow it
contains. Each direction of each connection gets its own dissector
instance, so interleaved flows never share reassembly state.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		printer := output.NewPrinter(os.Stdout)
		printer.Raw = cfg.Raw
		printer.Quiet = cfg.Quiet

		flows := capture.NewFlows(cfg.Port, dissectConfig(cfg), printer)

		return capture.ReadFile(args[0], flows, !noProgress)
	},
}

func init() {
	pcapCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
}
