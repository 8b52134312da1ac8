package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nblair2/dnp3snoop/internal/capture"
	"github.com/nblair2/dnp3snoop/internal/live"
	"github.com/nblair2/dnp3snoop/internal/output"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Watch DNP3 traffic on the local wire",
	Long: `Diverts local DNP3 traffic through an NFQUEUE and dissects each packet
before passing it on unmodified. Requires root for the iptables rules.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		printer := output.NewPrinter(os.Stdout)
		printer.Raw = cfg.Raw
		printer.Quiet = cfg.Quiet

		flows := capture.NewFlows(cfg.Port, dissectConfig(cfg), printer)

		return live.Observe(cfg.Port, flows, newLogger(cfg))
	},
}
