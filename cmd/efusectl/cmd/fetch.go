package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tpterovtt/betrusted-soc/pkg/efuse"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Read the current fuse state",
	Long: `Read back the KEY, USER and CNTL fuse arrays and print the decoded
state. Nothing is programmed.

Examples:
  efusectl fetch --driver sim
  efusectl fetch -v --driver cmsisdap`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	drv, m, err := openTarget()
	if err != nil {
		return err
	}
	defer closeDriver(drv)

	var phy efuse.Phy
	if err := phy.Fetch(m, drv); err != nil {
		return err
	}

	printPhy(&phy)
	return nil
}

func printPhy(phy *efuse.Phy) {
	fmt.Printf("KEY    %x\n", phy.Key)
	fmt.Printf("USER   0x%08x\n", phy.User)
	fmt.Printf("CNTL   0x%02x (%s)\n", phy.Cntl, cntlFlags(phy.Cntl))
	fmt.Println()
	for i, bank := range phy.Banks {
		fmt.Printf("bank %2d  0x%08x\n", i, bank)
	}
}

// cntlFlags names the set CNTL bits in register order.
func cntlFlags(cntl uint8) string {
	names := []struct {
		bit  uint8
		name string
	}{
		{efuse.CntlCfgAESOnly, "CFG_AES_Only"},
		{efuse.CntlAESExclusive, "AES_Exclusive"},
		{efuse.CntlKeyWriteDisable, "W_EN_B_Key"},
		{efuse.CntlUserWriteDisable, "W_EN_B_User"},
		{efuse.CntlKeyReadDisable, "R_EN_B_Key"},
		{efuse.CntlUserReadDisable, "R_EN_B_User"},
	}
	var set []string
	for _, n := range names {
		if cntl&n.bit != 0 {
			set = append(set, n.name)
		}
	}
	if len(set) == 0 {
		return "none"
	}
	return strings.Join(set, " ")
}
