package efuse

import (
	"fmt"

	"github.com/tpterovtt/betrusted-soc/pkg/ecc"
	"github.com/tpterovtt/betrusted-soc/pkg/jtag"
)

// Phy is a snapshot of the physical fuse array as reported by hardware.
// It is ground truth, never a projection of intent: Fetch rebuilds every
// field from the readback streams and nothing else mutates them.
type Phy struct {
	// Banks holds the 13 coded bank words. Banks[0] is CNTL with its
	// duplicated-bit redundancy, Banks[1..11] are the KEY banks (bank 11
	// shared with USER's low byte) and Banks[12] is USER's upper 24 bits.
	Banks [13]uint32
	// Key holds the 32 key bytes exactly as the hardware delivered them.
	Key  [32]byte
	User uint32
	Cntl uint8
}

// Fetch resets the TAP and issues the KEY, USER and CNTL readback
// transactions, rebuilding the snapshot. A missing response is a transport
// fault: the returned error is fatal for this snapshot and none of its
// fields may be trusted afterwards.
func (p *Phy) Fetch(m *jtag.Mach, d jtag.Driver) error {
	if err := m.Reset(d); err != nil {
		return fmt.Errorf("efuse: reset before fetch: %w", err)
	}

	// The 256-bit KEY stream is decoded twice: once as bank chunks (a
	// 16-bit fragment of bank 11, then banks 10 down to 1 as 24-bit raw
	// values) and once, rewound, as the 32 key bytes.
	key, err := readback(m, d, CmdFuseKey, 256, "FUSE_KEY")
	if err != nil {
		return err
	}
	frag := uint32(key.PopLittle(16))
	for i := 1; i <= 10; i++ {
		p.Banks[11-i] = ecc.Encode(uint32(key.PopLittle(24)))
	}
	key.Rewind()
	for i := range p.Key {
		p.Key[i] = byte(key.PopLittle(8))
	}

	user, err := readback(m, d, CmdFuseUser, 32, "FUSE_USER")
	if err != nil {
		return err
	}
	p.User = uint32(user.PopLittle(32))
	p.Banks[12] = ecc.Encode(p.User >> 8)
	p.Banks[11] = ecc.Encode(frag | (p.User&0xFF)<<16)

	cntl, err := readback(m, d, CmdFuseCntl, 14, "FUSE_CNTL")
	if err != nil {
		return err
	}
	raw := uint32(cntl.PopLittle(14))
	p.Cntl = uint8(raw & 0x3F)
	p.Banks[0] = raw | (raw&0x3F)<<14

	return nil
}

// readback shifts a fuse-select instruction followed by an all-zero data
// scan of the given width and returns the captured leg.
func readback(m *jtag.Mach, d jtag.Driver, cmd uint64, bits int, tag string) (*jtag.Leg, error) {
	ir := jtag.NewLeg(jtag.ChainIR, tag)
	ir.PushLittle(cmd, irBits)
	m.Add(ir)

	dr := jtag.NewLeg(jtag.ChainDR, tag)
	dr.PushLittle(0, bits)
	m.Add(dr)

	for m.HasPending() {
		if err := m.Next(d); err != nil {
			return nil, fmt.Errorf("efuse: %s readback: %w", tag, err)
		}
	}
	resp := m.Get()
	if resp == nil {
		return nil, fmt.Errorf("efuse: %s readback: %w", tag, jtag.ErrNoResponse)
	}
	return resp, nil
}
