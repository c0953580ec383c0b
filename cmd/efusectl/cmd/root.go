package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose     bool
	driverType  string
	usbVID      string
	usbPID      string
	clockHz     int
	forceIDCode bool
)

var rootCmd = &cobra.Command{
	Use:   "efusectl",
	Short: "Xilinx 7-series eFuse programmer",
	Long: `A JTAG tool for the one-time-programmable eFuses of Xilinx 7-series
FPGAs: the 256-bit AES bitstream key, the 32-bit USER word and the CNTL
control bits.

eFuses burn in one direction only. Every command that touches hardware
starts from a fresh readback of the fuse array, and burn refuses any
configuration that would need an already-burned bit to clear.

Examples:
  efusectl probes                              # List attached probes
  efusectl idcode                              # Identify the target device
  efusectl fetch                               # Print the current fuse state
  efusectl validate --config fuses.json        # Dry-run a configuration
  efusectl burn --config fuses.json --force    # Burn it (irreversible)`,
	Version: "0.2.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !verbose {
			log.SetOutput(io.Discard)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&driverType, "driver", "d", "cmsisdap",
		"JTAG driver (sim, cmsisdap, ft232h)")
	rootCmd.PersistentFlags().StringVar(&usbVID, "vid", "",
		"probe USB vendor ID (hex, cmsisdap only)")
	rootCmd.PersistentFlags().StringVar(&usbPID, "pid", "",
		"probe USB product ID (hex, cmsisdap only)")
	rootCmd.PersistentFlags().IntVar(&clockHz, "clock", 1000000,
		"TCK speed in Hz (cmsisdap only)")
	rootCmd.PersistentFlags().BoolVar(&forceIDCode, "force-idcode", false,
		"continue even if the device is not a known 7-series FPGA")
}
