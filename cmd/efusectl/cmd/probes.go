package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tpterovtt/betrusted-soc/pkg/jtag"
)

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "List attached JTAG probes",
	Long: `List the probes this tool can drive: CMSIS-DAP debug probes on the
default USB IDs and FT232H cables.`,
	RunE: runProbes,
}

func init() {
	rootCmd.AddCommand(probesCmd)
}

func runProbes(cmd *cobra.Command, args []string) error {
	probes, err := jtag.Probes()
	if err != nil {
		return fmt.Errorf("failed to enumerate probes: %w", err)
	}
	if len(probes) == 0 {
		fmt.Println("No probes found")
		return nil
	}

	for _, p := range probes {
		fmt.Printf("%-10s %04x:%04x", p.Driver, p.VID, p.PID)
		if p.Serial != "" {
			fmt.Printf("  serial %s", p.Serial)
		}
		if p.Description != "" {
			fmt.Printf("  %s", p.Description)
		}
		fmt.Println()
	}
	return nil
}
