package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tpterovtt/betrusted-soc/pkg/idcode"
	"github.com/tpterovtt/betrusted-soc/pkg/jtag"
)

var idcodeCmd = &cobra.Command{
	Use:   "idcode",
	Short: "Read and decode the device IDCODE",
	Long: `Reset the TAP and read the 32-bit identification register, decoding
the JEP106 manufacturer and the 7-series part name.

Examples:
  efusectl idcode --driver sim
  efusectl idcode --driver cmsisdap --vid 0x2e8a --pid 0x000c`,
	RunE: runIDCode,
}

func init() {
	rootCmd.AddCommand(idcodeCmd)
}

func runIDCode(cmd *cobra.Command, args []string) error {
	drv, err := openDriver()
	if err != nil {
		return err
	}
	defer closeDriver(drv)

	m := jtag.NewMach()
	code, err := idcode.Read(m, drv)
	if err != nil {
		return fmt.Errorf("failed to read IDCODE: %w", err)
	}

	fmt.Println(code)
	if !code.IsXilinx() {
		color.Yellow("not a Xilinx device")
	} else if idcode.PartName(code.Part) == "" {
		color.Yellow("Xilinx, but not a known 7-series part")
	}
	return nil
}
