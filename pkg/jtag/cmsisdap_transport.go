package jtag

import (
	"fmt"

	"github.com/google/gousb"
)

// Raspberry Pi Debug Probe, the default CMSIS-DAP hardware for this tool.
const (
	DefaultVendorID  = 0x2E8A
	DefaultProductID = 0x000C
)

const defaultPacketSize = 64

// usbLink is the raw packet pipe to a CMSIS-DAP probe: one claimed
// vendor-class interface with a bulk endpoint in each direction.
type usbLink struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface

	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint

	packetSize int
}

func openUSBLink(vid, pid uint16) (*usbLink, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("jtag: open probe: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("jtag: probe not found (VID:0x%04X PID:0x%04X)", vid, pid)
	}

	// Detach kernel drivers that may have bound the interface. Failure is
	// not fatal everywhere, so keep going.
	_ = dev.SetAutoDetach(true)

	link := &usbLink{ctx: ctx, dev: dev, packetSize: defaultPacketSize}
	if err := link.claim(); err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}
	return link, nil
}

// claim finds the vendor-class interface carrying the CMSIS-DAP endpoints
// and opens its bulk IN/OUT pair.
func (u *usbLink) claim() error {
	cfg, err := u.dev.Config(1)
	if err != nil {
		return fmt.Errorf("jtag: usb config: %w", err)
	}
	u.cfg = cfg

	num := -1
	for _, intf := range cfg.Desc.Interfaces {
		if len(intf.AltSettings) == 0 {
			continue
		}
		if intf.AltSettings[0].Class == gousb.ClassVendorSpec {
			num = intf.Number
			break
		}
	}
	if num == -1 {
		// Some firmware reports its class oddly; interface 0 is the
		// conventional fallback.
		num = 0
	}

	intf, err := cfg.Interface(num, 0)
	if err != nil {
		return fmt.Errorf("jtag: claim interface %d: %w", num, err)
	}
	u.intf = intf

	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch ep.Direction {
		case gousb.EndpointDirectionOut:
			if u.epOut == nil {
				out, err := intf.OutEndpoint(ep.Number)
				if err != nil {
					return fmt.Errorf("jtag: open OUT endpoint: %w", err)
				}
				u.epOut = out
			}
		case gousb.EndpointDirectionIn:
			if u.epIn == nil {
				in, err := intf.InEndpoint(ep.Number)
				if err != nil {
					return fmt.Errorf("jtag: open IN endpoint: %w", err)
				}
				u.epIn = in
				u.packetSize = ep.MaxPacketSize
			}
		}
	}
	if u.epOut == nil || u.epIn == nil {
		return fmt.Errorf("jtag: bulk endpoint pair not found")
	}
	return nil
}

// writeRead performs one command/response transaction. CMSIS-DAP packets are
// fixed size, so commands are padded up to the endpoint packet size.
func (u *usbLink) writeRead(cmd []byte) ([]byte, error) {
	packet := make([]byte, u.packetSize)
	copy(packet, cmd)
	if _, err := u.epOut.Write(packet); err != nil {
		return nil, fmt.Errorf("jtag: usb write: %w", err)
	}
	resp := make([]byte, u.packetSize)
	n, err := u.epIn.Read(resp)
	if err != nil {
		return nil, fmt.Errorf("jtag: usb read: %w", err)
	}
	return resp[:n], nil
}

func (u *usbLink) close() error {
	if u.intf != nil {
		u.intf.Close()
		u.intf = nil
	}
	if u.cfg != nil {
		u.cfg.Close()
		u.cfg = nil
	}
	if u.dev != nil {
		u.dev.Close()
		u.dev = nil
	}
	if u.ctx != nil {
		u.ctx.Close()
		u.ctx = nil
	}
	return nil
}
