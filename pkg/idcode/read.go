package idcode

import (
	"fmt"

	"github.com/tpterovtt/betrusted-soc/pkg/jtag"
)

// Read resets the TAP and shifts the identification register. After
// Test-Logic-Reset the IDCODE instruction is preloaded, so no IR scan is
// needed; a bare 32-bit DR scan reads the code.
func Read(m *jtag.Mach, d jtag.Driver) (IDCode, error) {
	if err := m.Reset(d); err != nil {
		return IDCode{}, fmt.Errorf("idcode: reset: %w", err)
	}

	raw, err := jtag.RunSequence(m, d, []jtag.Op{
		{Chain: jtag.ChainDR, Bits: 32, Value: 0, Tag: "IDCODE"},
	})
	if err != nil {
		return IDCode{}, fmt.Errorf("idcode: read: %w", err)
	}

	switch uint32(raw) {
	case 0:
		return IDCode{}, fmt.Errorf("idcode: TDO stuck low, check the cable")
	case 0xFFFFFFFF:
		return IDCode{}, fmt.Errorf("idcode: TDO stuck high, no device on the chain")
	}
	return Parse(uint32(raw)), nil
}
