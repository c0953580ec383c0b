package efuse

import (
	"github.com/tpterovtt/betrusted-soc/pkg/ecc"
	"github.com/tpterovtt/betrusted-soc/pkg/tap"
)

// Sim emulates the eFuse and IDCODE data paths of a 7-series device behind
// the one-cycle Driver contract. It follows the real TAP graph: the
// instruction register latches on Update-IR, readback streams load on
// Capture-DR and programming words decode on Update-DR. Tests therefore
// exercise the exact command framing the hardware demands, not a shortcut
// around it.
type Sim struct {
	// Banks is the fuse array. Programming words can only set bits.
	// Tests may pre-load it to model a part-burned device.
	Banks [13]uint32
	// IDCode is served after reset and under the IDCODE instruction.
	IDCode uint32
	// Violations counts programming words that arrived outside the
	// documented unlock and bank-select framing or with a malformed
	// payload. A clean burn leaves it at zero.
	Violations int

	state   tap.State
	ir      uint64
	irShift uint64
	dr      []bool

	selectedBank int
	unlockSteps  int
}

// NewSim returns a blank device reporting a Spartan-7 XC7S50 IDCODE.
func NewSim() *Sim {
	return &Sim{
		IDCode:       0x0362F093,
		state:        tap.TestLogicReset,
		ir:           CmdIDCode,
		selectedBank: -1,
	}
}

// Clock implements jtag.Driver.
func (s *Sim) Clock(tdi, tms bool) (bool, error) {
	var tdo bool
	switch s.state {
	case tap.ShiftIR:
		tdo = s.irShift&1 == 1
		s.irShift >>= 1
		if tdi {
			s.irShift |= 1 << (irBits - 1)
		}
	case tap.ShiftDR:
		if len(s.dr) > 0 {
			tdo = s.dr[0]
			s.dr = s.dr[1:]
		}
		s.dr = append(s.dr, tdi)
	}

	s.state = tap.Next(s.state, tms)

	switch s.state {
	case tap.TestLogicReset:
		s.ir = CmdIDCode
	case tap.CaptureIR:
		s.irShift = 0b01
	case tap.CaptureDR:
		s.dr = s.capture()
	case tap.UpdateIR:
		s.ir = s.irShift
	case tap.UpdateDR:
		s.update()
	}
	return tdo, nil
}

// capture loads the data register for the latched instruction. Unknown
// instructions behave as a single bypass bit.
func (s *Sim) capture() []bool {
	switch s.ir {
	case CmdIDCode:
		return littleBits(uint64(s.IDCode), 32)
	case CmdFuseKey:
		return s.keyStream()
	case CmdFuseUser:
		user := uint64(s.Banks[12]&ecc.DataMask)<<8 | uint64(s.Banks[11]>>16&0xFF)
		return littleBits(user, 32)
	case CmdFuseCntl:
		return littleBits(uint64(s.Banks[0]&0x3FFF), 14)
	case CmdEfuse:
		return littleBits(0, 64)
	default:
		return littleBits(0, 1)
	}
}

// keyStream builds the 256-bit FUSE_KEY readback: bank 11's low 16 raw
// bits first, then banks 10 down to 1 as raw 24-bit values.
func (s *Sim) keyStream() []bool {
	out := littleBits(uint64(s.Banks[11]&0xFFFF), 16)
	for bank := 10; bank >= 1; bank-- {
		out = append(out, littleBits(uint64(s.Banks[bank]&ecc.DataMask), 24)...)
	}
	return out
}

// update decodes the shifted-in data register on Update-DR. Only the EFUSE
// instruction has programming side effects.
func (s *Sim) update() {
	if s.ir != CmdEfuse {
		return
	}
	var v uint64
	for i, bit := range s.dr {
		if i == 64 {
			break
		}
		if bit {
			v |= 1 << uint(i)
		}
	}
	s.program(v)
}

// program classifies one EFUSE data-register word.
func (s *Sim) program(v uint64) {
	const magic = 0xa08a28ac

	switch {
	case v == 0:
		// wait word
	case v == KeyUnlock:
		s.unlockSteps++
	case v == commitWord:
		s.selectedBank = -1
		s.unlockSteps = 0
	case v>>32 == magic && v&(1<<14) != 0:
		s.burnWord(v)
	case v>>32 == magic && uint32(v)&^0xFF == 0:
		bank, ok := bankFromSelect(uint8(v))
		if !ok {
			s.Violations++
			return
		}
		s.selectedBank = bank
	default:
		s.Violations++
	}
}

// burnWord applies a single-bit programming word, counting anything the
// hardware would reject as a violation.
func (s *Sim) burnWord(v uint64) {
	sel := uint8(v)
	if sel&0b10 == 0 {
		s.Violations++
		return
	}
	bank, ok := bankFromSelect(sel &^ 0b10)
	if !ok || bank != s.selectedBank || s.unlockSteps < 2 {
		s.Violations++
		return
	}
	bit := uint(v >> 8 & 0x3F)
	s.Banks[bank] |= 1 << bit
}

// bankFromSelect inverts the bank-select byte formula.
func bankFromSelect(sel uint8) (int, bool) {
	if sel == 0x99 {
		return 0, true
	}
	if sel < 0xA1 || (sel-0xA1)%8 != 0 {
		return 0, false
	}
	bank := int(sel-0xA1)/8 + 1
	if bank > 12 {
		return 0, false
	}
	return bank, true
}

func littleBits(v uint64, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v>>uint(i)&1 == 1
	}
	return out
}
