package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tpterovtt/betrusted-soc/pkg/efuse"
)

var validateConfigPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a desired configuration against the device",
	Long: `Read the current fuse state and check whether the desired
configuration can still be burned. A bank is blocked when it would need
an already-burned bit to return to zero.

The exit status is non-zero when any bank is blocked.

Examples:
  efusectl validate --config fuses.json --driver sim
  efusectl validate -c fuses.json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateConfigPath, "config", "c", "",
		"desired configuration JSON")
	validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := efuse.LoadConfig(validateConfigPath)
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

	blocked := printPlan(efuse.NewBurner(&phy, cfg).Plan())
	if blocked > 0 {
		return fmt.Errorf("%d bank(s) need burned bits cleared", blocked)
	}
	color.Green("configuration can be burned")
	return nil
}

// printPlan renders the per-bank burn plan and returns the number of
// blocked banks.
func printPlan(plan [13]efuse.BankState) int {
	blocked := 0
	fmt.Printf("bank   physical    desired     burn\n")
	for i, st := range plan {
		status := color.GreenString("ok")
		if !st.Valid {
			status = color.RedString("BLOCKED")
			blocked++
		} else if st.Burn == 0 {
			status = "-"
		}
		fmt.Printf("%4d   0x%08x  0x%08x  0x%08x  %s\n",
			i, st.Physical, st.Desired, st.Burn, status)
	}
	return blocked
}
