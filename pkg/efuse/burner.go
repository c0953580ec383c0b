package efuse

import (
	"errors"
	"fmt"

	"github.com/tpterovtt/betrusted-soc/pkg/ecc"
	"github.com/tpterovtt/betrusted-soc/pkg/jtag"
)

// ErrInvalidConfig is returned by Burn when reaching the desired
// configuration would need at least one 1→0 fuse transition. No hardware
// traffic has happened when this error comes back.
var ErrInvalidConfig = errors.New("efuse: desired configuration requires clearing burned fuses")

// cntlPhysMask covers the bank 0 positions holding the six CNTL bits and
// their duplicated copy. The positions in between read back undocumented
// values and take no part in validation.
const cntlPhysMask = 0x3F | 0x3F<<14

// BankState is one bank's slice of a burn plan.
type BankState struct {
	Physical uint32 // coded word currently in the fuses
	Desired  uint32 // coded word the configuration asks for
	Burn     uint32 // bits that must flip 0→1
	Valid    bool   // no burned bit would need clearing
}

// Burner checks a desired configuration against a physical snapshot and,
// when every bank passes, issues the burn and commit sequences. It holds
// the snapshot and configuration by reference and borrows the transport
// only for the duration of Burn.
type Burner struct {
	phy *Phy
	cfg *Config
}

func NewBurner(phy *Phy, cfg *Config) *Burner {
	return &Burner{phy: phy, cfg: cfg}
}

// desired returns the coded value the configuration implies for one bank,
// applying the same packing rules Fetch uses on the way in.
func (b *Burner) desired(bank int) uint32 {
	key := b.cfg.key
	switch {
	case bank == 0:
		c := uint32(b.cfg.cntl & 0x3F)
		return c | c<<14
	case bank <= 10:
		i := (bank - 1) * 3
		return ecc.Encode(uint32(key[i+2])<<16 | uint32(key[i+1])<<8 | uint32(key[i]))
	case bank == 11:
		return ecc.Encode((b.cfg.user&0xFF)<<16 | uint32(key[31])<<8 | uint32(key[30]))
	default:
		return ecc.Encode(b.cfg.user >> 8)
	}
}

// Plan reports the per-bank delta between the snapshot and the desired
// configuration. It is pure: no hardware is touched.
func (b *Burner) Plan() [13]BankState {
	var plan [13]BankState
	for bank := range plan {
		phys := b.phy.Banks[bank]
		if bank == 0 {
			phys &= cntlPhysMask
		}
		des := b.desired(bank)
		plan[bank] = BankState{
			Physical: b.phy.Banks[bank],
			Desired:  des,
			Burn:     (phys ^ des) & des,
			Valid:    (phys^des)&phys == 0,
		}
	}
	return plan
}

// IsValid reports whether every bank can reach its desired value with only
// 0→1 transitions. All 13 banks are checked.
func (b *Burner) IsValid() bool {
	valid := true
	for _, st := range b.Plan() {
		if !st.Valid {
			valid = false
		}
	}
	return valid
}

// Burn issues the programming sequence for every bank with a nonzero delta
// and then the fixed commit sequence. It re-validates first and fails
// closed: on an invalid configuration the driver sees zero clock cycles.
//
// Banks 12 down to 1 are burned before bank 0, because the CNTL bits gate
// programming and readback of everything else. Once a bank's bit loop has
// started it runs to completion; there is no cancellation point and no
// rollback.
func (b *Burner) Burn(m *jtag.Mach, d jtag.Driver) error {
	if !b.IsValid() {
		return ErrInvalidConfig
	}
	plan := b.Plan()

	if err := m.Reset(d); err != nil {
		return fmt.Errorf("efuse: reset before burn: %w", err)
	}

	for bank := 12; bank >= 1; bank-- {
		if err := burnBank(m, d, bank, plan[bank].Burn); err != nil {
			return err
		}
	}
	if err := burnBank(m, d, 0, plan[0].Burn); err != nil {
		return err
	}

	if _, err := jtag.RunSequence(m, d, commitOps); err != nil {
		return fmt.Errorf("efuse: commit: %w", err)
	}
	return nil
}

// burnBank programs the set bits of ones into one bank in ascending bit
// order. The unlock and bank-select framing brackets the bit loop on both
// sides. A zero mask is a no-op.
func burnBank(m *jtag.Mach, d jtag.Driver, bank int, ones uint32) error {
	if ones == 0 {
		return nil
	}

	if _, err := jtag.RunSequence(m, d, bankFrame(bank)); err != nil {
		return fmt.Errorf("efuse: bank %d select: %w", bank, err)
	}
	for bit := 0; bit < 32; bit++ {
		if ones>>uint(bit)&1 == 0 {
			continue
		}
		if _, err := jtag.RunSequence(m, d, burnOps(bank, bit)); err != nil {
			return fmt.Errorf("efuse: bank %d bit %d: %w", bank, bit, err)
		}
	}
	if _, err := jtag.RunSequence(m, d, bankFrame(bank)); err != nil {
		return fmt.Errorf("efuse: bank %d close: %w", bank, err)
	}
	return nil
}
