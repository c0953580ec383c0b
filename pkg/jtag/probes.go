package jtag

import (
	"fmt"

	"github.com/google/gousb"
	"periph.io/x/host/v3/ftdi"
)

// ProbeInfo describes one discovered programming adapter.
type ProbeInfo struct {
	Driver      string // "cmsisdap" or "ft232h"
	VID         uint16
	PID         uint16
	Serial      string
	Description string
}

// Probes lists the adapters this tool can drive: CMSIS-DAP probes on the
// default USB IDs and FT232H cables. Enumeration errors for one family do
// not hide the other's results.
func Probes() ([]ProbeInfo, error) {
	var probes []ProbeInfo

	dapProbes, dapErr := cmsisdapProbes()
	probes = append(probes, dapProbes...)

	if err := initHost(); err == nil {
		info := ftdi.Info{}
		for _, dev := range ftdi.All() {
			dev.Info(&info)
			if info.VenID != ftdiVendorID || info.DevID != ft232hProductID {
				continue
			}
			probes = append(probes, ProbeInfo{
				Driver:      "ft232h",
				VID:         info.VenID,
				PID:         info.DevID,
				Description: fmt.Sprintf("FT232H (%s)", info.Type),
			})
		}
	}

	if len(probes) == 0 && dapErr != nil {
		return nil, dapErr
	}
	return probes, nil
}

func cmsisdapProbes() ([]ProbeInfo, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == DefaultVendorID && desc.Product == DefaultProductID
	})
	if err != nil {
		return nil, fmt.Errorf("jtag: enumerate probes: %w", err)
	}

	var probes []ProbeInfo
	for _, dev := range devs {
		serial, _ := dev.SerialNumber()
		manufacturer, _ := dev.Manufacturer()
		product, _ := dev.Product()
		probes = append(probes, ProbeInfo{
			Driver:      "cmsisdap",
			VID:         uint16(dev.Desc.Vendor),
			PID:         uint16(dev.Desc.Product),
			Serial:      serial,
			Description: fmt.Sprintf("%s %s", manufacturer, product),
		})
		dev.Close()
	}
	return probes, nil
}
