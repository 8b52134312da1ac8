package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nblair2/dnp3snoop/internal/forge"
)

var (
	forgeRounds int
	forgePoints int
	forgeOut    string
)

var forgeCmd = &cobra.Command{
	Use:   "forge",
	Short: "Generate sample DNP3 poll traffic",
	Long: `Writes rounds of valid class-poll request/response traffic as raw wire
bytes, to stdout or a file. Useful as demo input for 'dnp3snoop file'.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		stream, err := forge.Stream(forgeRounds, forgePoints)
		if err != nil {
			return fmt.Errorf("error forging stream: %w", err)
		}

		if forgeOut == "" || forgeOut == "-" {
			_, err = os.Stdout.Write(stream)
		} else {
			err = os.WriteFile(forgeOut, stream, 0o644)
		}

		if err != nil {
			return fmt.Errorf("error writing stream: %w", err)
		}

		return nil
	},
}

func init() {
	forgeCmd.Flags().IntVar(&forgeRounds, "rounds", 1, "poll rounds to generate")
	forgeCmd.Flags().IntVar(&forgePoints, "points", 8, "analog points per response")
	forgeCmd.Flags().StringVarP(&forgeOut, "out", "o", "", "output file (default stdout)")
}
