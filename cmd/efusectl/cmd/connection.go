package cmd

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/tpterovtt/betrusted-soc/pkg/efuse"
	"github.com/tpterovtt/betrusted-soc/pkg/idcode"
	"github.com/tpterovtt/betrusted-soc/pkg/jtag"
)

// openDriver opens the JTAG driver selected by --driver.
func openDriver() (jtag.Driver, error) {
	switch driverType {
	case "sim", "simulator":
		return efuse.NewSim(), nil

	case "cmsisdap", "dap":
		vid, err := usbID(usbVID, jtag.DefaultVendorID)
		if err != nil {
			return nil, fmt.Errorf("bad --vid: %w", err)
		}
		pid, err := usbID(usbPID, jtag.DefaultProductID)
		if err != nil {
			return nil, fmt.Errorf("bad --pid: %w", err)
		}
		d, err := jtag.OpenCMSISDAP(vid, pid)
		if err != nil {
			return nil, err
		}
		if err := d.SetClock(uint32(clockHz)); err != nil {
			d.Close()
			return nil, err
		}
		return d, nil

	case "ft232h":
		return jtag.OpenFT232H()

	default:
		return nil, fmt.Errorf("unknown driver %q (supported: sim, cmsisdap, ft232h)", driverType)
	}
}

// closeDriver releases the driver if it holds real hardware.
func closeDriver(d jtag.Driver) {
	if c, ok := d.(io.Closer); ok {
		c.Close()
	}
}

// openTarget opens the selected driver and verifies that the device at the
// end of the cable identifies as a 7-series FPGA. --force-idcode downgrades
// an identity mismatch to a warning.
func openTarget() (jtag.Driver, *jtag.Mach, error) {
	drv, err := openDriver()
	if err != nil {
		return nil, nil, err
	}

	m := jtag.NewMach()
	code, err := idcode.Read(m, drv)
	if err != nil {
		closeDriver(drv)
		return nil, nil, err
	}
	log.Printf("device: %s", code)

	if !code.IsXilinx() || idcode.PartName(code.Part) == "" {
		if !forceIDCode {
			closeDriver(drv)
			return nil, nil, fmt.Errorf("device is %s, not a known 7-series FPGA (--force-idcode overrides)", code)
		}
		color.Yellow("warning: device is %s, not a known 7-series FPGA", code)
	}

	return drv, m, nil
}

// usbID parses a hex --vid/--pid override, keeping the default when unset.
func usbID(s string, def uint16) (uint16, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
