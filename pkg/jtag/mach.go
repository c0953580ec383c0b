package jtag

import (
	"fmt"

	"github.com/tpterovtt/betrusted-soc/pkg/tap"
)

// Mach queues shift requests and drains them one at a time through a Driver,
// tracking the TAP controller state across operations. Every drain is a full
// blocking round trip: walk to the shift state, clock the payload while
// capturing TDO, and park back in Run-Test/Idle.
//
// A Mach owns its driver's TAP state for as long as it is in use; interleaving
// a second Mach (or raw Clock calls) on the same driver corrupts the stream.
type Mach struct {
	tap     *tap.Machine
	pending []*Leg
	last    *Leg
}

// NewMach returns a machine that assumes the TAP is in Test-Logic-Reset.
// Call Reset before the first shift to make that true.
func NewMach() *Mach {
	return &Mach{tap: tap.NewMachine()}
}

// Reset drives the five TMS=1 cycles that force any 1149.1 TAP into
// Test-Logic-Reset, then clears all queued requests and the last response.
func (m *Mach) Reset(d Driver) error {
	for i := 0; i < 5; i++ {
		if _, err := d.Clock(false, true); err != nil {
			return fmt.Errorf("jtag: reset: %w", err)
		}
	}
	m.tap.Reset()
	m.pending = m.pending[:0]
	m.last = nil
	return nil
}

// Add enqueues a shift request. Nothing touches the hardware until Next.
func (m *Mach) Add(l *Leg) {
	m.pending = append(m.pending, l)
}

// HasPending reports whether queued requests remain.
func (m *Mach) HasPending() bool {
	return len(m.pending) > 0
}

// Get returns the response captured for the most recently drained request,
// or nil if none is available.
func (m *Mach) Get() *Leg {
	return m.last
}

// Next drains one queued request through the driver. The last payload bit is
// clocked with TMS=1 so the TAP leaves the shift state on the same cycle, per
// 1149.1; the walk back to Run-Test/Idle passes through Update, which is what
// latches IR instructions and fires DR side effects on the device.
func (m *Mach) Next(d Driver) error {
	if len(m.pending) == 0 {
		return ErrNoPending
	}
	l := m.pending[0]
	m.pending = m.pending[1:]

	target := tap.ShiftDR
	if l.Chain == ChainIR {
		target = tap.ShiftIR
	}
	if err := m.walk(d, target); err != nil {
		return err
	}

	captured := make([]bool, len(l.bits))
	for i, bit := range l.bits {
		exit := i == len(l.bits)-1
		tdo, err := d.Clock(bit, exit)
		if err != nil {
			return fmt.Errorf("jtag: shift %s (%s): %w", l.Chain, l.Tag, err)
		}
		m.tap.Clock(exit)
		captured[i] = tdo
	}

	if err := m.walk(d, tap.RunTestIdle); err != nil {
		return err
	}

	m.last = &Leg{Chain: l.Chain, Tag: l.Tag, bits: captured}
	return nil
}

// walk replays the TMS path to target on the driver. TDI is held low while
// navigating; nothing is captured.
func (m *Mach) walk(d Driver, target tap.State) error {
	for _, tms := range m.tap.Seek(target) {
		if _, err := d.Clock(false, tms); err != nil {
			return fmt.Errorf("jtag: walk to %s: %w", target, err)
		}
	}
	return nil
}
