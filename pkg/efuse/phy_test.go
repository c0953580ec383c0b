package efuse

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tpterovtt/betrusted-soc/pkg/ecc"
	"github.com/tpterovtt/betrusted-soc/pkg/jtag"
)

func TestFetchRoundTrip(t *testing.T) {
	sim := NewSim()
	sim.Banks[0] = 0x15 | 0x15<<14
	sim.Banks[1] = ecc.Encode(0x78009A)
	sim.Banks[10] = ecc.Encode(0x000056)
	sim.Banks[11] = ecc.Encode(0xAB1234)
	sim.Banks[12] = ecc.Encode(0x00CDEF)

	m := jtag.NewMach()
	var phy Phy
	if err := phy.Fetch(m, sim); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if diff := cmp.Diff(sim.Banks, phy.Banks); diff != "" {
		t.Errorf("banks mismatch (-want +got):\n%s", diff)
	}
	if phy.User != 0x00CDEFAB {
		t.Errorf("User = %#x, want 0xcdefab", phy.User)
	}
	if phy.Cntl != 0x15 {
		t.Errorf("Cntl = %#x, want 0x15", phy.Cntl)
	}

	// Key bytes arrive as the raw 256-bit stream: bank 11's 16-bit
	// fragment, then banks 10 down to 1 as 24-bit chunks.
	var wantKey [32]byte
	wantKey[0], wantKey[1] = 0x34, 0x12 // bank 11 fragment 0x1234
	wantKey[2] = 0x56                   // bank 10 chunk 0x000056
	wantKey[29], wantKey[31] = 0x9A, 0x78
	if diff := cmp.Diff(wantKey, phy.Key); diff != "" {
		t.Errorf("key mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchBlankDevice(t *testing.T) {
	sim := NewSim()
	m := jtag.NewMach()
	var phy Phy
	if err := phy.Fetch(m, sim); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if phy.Banks != ([13]uint32{}) {
		t.Errorf("banks = %#x, want all zero", phy.Banks)
	}
	if phy.User != 0 || phy.Cntl != 0 || phy.Key != ([32]byte{}) {
		t.Errorf("logical fields = %#x/%#x/%x, want all zero", phy.User, phy.Cntl, phy.Key)
	}
}

func TestFetchTransportFault(t *testing.T) {
	unplugged := jtag.DriverFunc(func(tdi, tms bool) (bool, error) {
		return false, errors.New("probe removed")
	})
	m := jtag.NewMach()
	var phy Phy
	if err := phy.Fetch(m, unplugged); err == nil {
		t.Fatal("Fetch() error = nil with a failing driver")
	}
}
