package jtag

import "errors"

// Driver is the one capability needed from a physical JTAG connection:
// perform a single TCK cycle, driving TDI and TMS and sampling TDO.
//
// Implementations in this repository: CMSISDAP (USB probe), FT232H (GPIO
// bit-bang) and the efuse package's device simulator.
type Driver interface {
	Clock(tdi, tms bool) (tdo bool, err error)
}

// DriverFunc adapts a plain function to the Driver interface, mainly for
// tests that want to script or record pin activity.
type DriverFunc func(tdi, tms bool) (bool, error)

// Clock calls f.
func (f DriverFunc) Clock(tdi, tms bool) (bool, error) {
	return f(tdi, tms)
}

// ErrNoResponse signals that a captured response was expected but none is
// available. Hardware non-response is a transport fault, not something the
// caller can retry at this layer.
var ErrNoResponse = errors.New("jtag: no response captured")

// ErrNoPending is returned by Mach.Next when the queue is empty.
var ErrNoPending = errors.New("jtag: no pending leg")
