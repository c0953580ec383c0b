package jtag

import (
	"fmt"
	"log"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"
)

// FT232H USB identifiers.
const (
	ftdiVendorID    = 0x0403
	ft232hProductID = 0x6014
)

var hostInitialized atomic.Bool

func initHost() error {
	if hostInitialized.CompareAndSwap(false, true) {
		if _, err := host.Init(); err != nil {
			hostInitialized.Store(false)
			return fmt.Errorf("jtag: host initialization failed: %w", err)
		}
	}
	return nil
}

// FT232H bit-bangs the TAP over an FT232H cable's D-bus GPIO pins, using
// the conventional MPSSE pin order:
//
//	D0 | TCK
//	D1 | TDI
//	D2 | TDO
//	D3 | TMS
type FT232H struct {
	ft *ftdi.FT232H

	tck gpio.PinIO
	tdi gpio.PinIO
	tdo gpio.PinIO
	tms gpio.PinIO
}

// OpenFT232H finds the first FT232H cable and configures its JTAG pins:
// TCK/TDI/TMS driven low/low/high, TDO as input.
func OpenFT232H() (*FT232H, error) {
	if err := initHost(); err != nil {
		return nil, err
	}

	d := &FT232H{}
	info := ftdi.Info{}
	for _, dev := range ftdi.All() {
		dev.Info(&info)
		if info.VenID != ftdiVendorID || info.DevID != ft232hProductID {
			continue
		}
		if ft, ok := dev.(*ftdi.FT232H); ok {
			d.ft = ft
			break
		}
	}
	if d.ft == nil {
		return nil, fmt.Errorf("jtag: no FT232H cable found")
	}
	log.Printf("ft232h: using %s", d.ft)

	d.tck = d.ft.D0
	d.tdi = d.ft.D1
	d.tdo = d.ft.D2
	d.tms = d.ft.D3

	if err := d.tck.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("jtag: TCK setup: %w", err)
	}
	if err := d.tdi.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("jtag: TDI setup: %w", err)
	}
	if err := d.tms.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("jtag: TMS setup: %w", err)
	}
	if err := d.tdo.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("jtag: TDO setup: %w", err)
	}
	return d, nil
}

// Clock sets TDI and TMS, samples TDO, then pulses TCK. The target updates
// TDO on the falling edge, so the sample taken before the rising edge is the
// value this cycle captures.
func (d *FT232H) Clock(tdi, tms bool) (bool, error) {
	if err := d.tdi.Out(gpio.Level(tdi)); err != nil {
		return false, fmt.Errorf("jtag: TDI drive: %w", err)
	}
	if err := d.tms.Out(gpio.Level(tms)); err != nil {
		return false, fmt.Errorf("jtag: TMS drive: %w", err)
	}
	tdo := d.tdo.Read()
	if err := d.tck.Out(gpio.High); err != nil {
		return false, fmt.Errorf("jtag: TCK rise: %w", err)
	}
	if err := d.tck.Out(gpio.Low); err != nil {
		return false, fmt.Errorf("jtag: TCK fall: %w", err)
	}
	return bool(tdo), nil
}

// Close parks the pins as inputs so the cable stops driving the target.
func (d *FT232H) Close() error {
	var first error
	for _, pin := range []gpio.PinIO{d.tck, d.tdi, d.tms} {
		if err := pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil && first == nil {
			first = fmt.Errorf("jtag: release %s: %w", pin, err)
		}
	}
	return first
}
