package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tpterovtt/betrusted-soc/pkg/efuse"
)

var (
	burnConfigPath string
	burnForce      bool
)

var burnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Burn a desired configuration (irreversible)",
	Long: `Validate the desired configuration against a fresh readback and, if
every bank passes, burn the missing bits and commit. Burned fuses can
never be cleared. The command refuses to run without --force.

Examples:
  efusectl burn --config fuses.json --force --driver sim
  efusectl burn -c fuses.json --force`,
	RunE: runBurn,
}

func init() {
	rootCmd.AddCommand(burnCmd)

	burnCmd.Flags().StringVarP(&burnConfigPath, "config", "c", "",
		"desired configuration JSON")
	burnCmd.Flags().BoolVar(&burnForce, "force", false,
		"really burn (fuses are one-time programmable)")
	burnCmd.MarkFlagRequired("config")
}

func runBurn(cmd *cobra.Command, args []string) error {
	if !burnForce {
		return fmt.Errorf("burning is irreversible, pass --force to proceed")
	}

	cfg, err := efuse.LoadConfig(burnConfigPath)
	if err != nil {
		return err
	}

	drv, m, err := openTarget()
	if err != nil {
		return err
	}
	defer closeDriver(drv)

	var phy efuse.Phy
	if err := phy.Fetch(m, drv); err != nil {
		return err
	}

	burner := efuse.NewBurner(&phy, cfg)
	if blocked := printPlan(burner.Plan()); blocked > 0 {
		return fmt.Errorf("refusing to burn: %d bank(s) need burned bits cleared", blocked)
	}

	if err := burner.Burn(m, drv); err != nil {
		return fmt.Errorf("burn failed: %w", err)
	}

	var after efuse.Phy
	if err := after.Fetch(m, drv); err != nil {
		return fmt.Errorf("readback after burn: %w", err)
	}
	for i, st := range efuse.NewBurner(&after, cfg).Plan() {
		if st.Burn != 0 {
			return fmt.Errorf("bank %d verification failed: bits 0x%08x did not burn", i, st.Burn)
		}
	}

	color.Green("burn complete and verified")
	return nil
}
