package efuse

import "github.com/tpterovtt/betrusted-soc/pkg/jtag"

// 7-series JTAG instruction opcodes used by the eFuse flow.
const (
	CmdUser1    = 0b000010
	CmdUser2    = 0b000011
	CmdIDCode   = 0b001001
	CmdJStart   = 0b001100
	CmdUser3    = 0b100010
	CmdEfuse    = 0b110000
	CmdFuseKey  = 0b110001
	CmdFuseUser = 0b110011
	CmdFuseCntl = 0b110100
	CmdBypass   = 0b111111
)

// Words shifted through the EFUSE data register. These are the wire
// protocol and must stay bit-exact.
const (
	// KeyUnlock opens a programming session. It is always shifted twice.
	KeyUnlock = 0xa08a28ac00004001
	// keyBankWord ORed with a bank-select byte addresses one bank.
	keyBankWord = 0xa08a28ac00000000
	// keyBurnWord ORed with a word-select byte and a bit index at bits
	// [13:8] burns one fuse.
	keyBurnWord = 0xa08a28ac00004000
	// commitWord opens the closing commit sequence.
	commitWord = 0xff000000ff
)

const irBits = 6

// bankSelect returns the framing byte addressing a physical bank.
func bankSelect(bank int) uint8 {
	if bank == 0 {
		return 0x99
	}
	return uint8((bank-1)*8 + 0xA1)
}

// bankFrame is the unlock plus bank-select framing issued before the first
// bit of a bank is burned and again after the last one to close the bank.
func bankFrame(bank int) []jtag.Op {
	sel := uint64(bankSelect(bank))
	return []jtag.Op{
		{Chain: jtag.ChainIR, Bits: irBits, Value: CmdJStart, Tag: "JSTART"},
		{Chain: jtag.ChainIR, Bits: irBits, Value: CmdEfuse, Tag: "EFUSE"},
		{Chain: jtag.ChainDR, Bits: 64, Value: KeyUnlock, Tag: "KEY_UNLOCK1"},
		{Chain: jtag.ChainDR, Bits: 64, Value: KeyUnlock, Tag: "KEY_UNLOCK2"},
		{Chain: jtag.ChainIR, Bits: irBits, Value: CmdEfuse, Tag: "EFUSE"},
		{Chain: jtag.ChainDR, Bits: 64, Value: keyBankWord | sel, Tag: "KEY_BANK"},
		{Chain: jtag.ChainDR, Bits: 64, Value: 0, Tag: "KEY_BANK_WAIT"},
	}
}

// burnOps programs a single fuse bit in the currently selected bank.
func burnOps(bank, bit int) []jtag.Op {
	word := keyBurnWord | uint64(bankSelect(bank)|0b10) | uint64(bit)<<8
	return []jtag.Op{
		{Chain: jtag.ChainIR, Bits: irBits, Value: CmdEfuse, Tag: "EFUSE"},
		{Chain: jtag.ChainDR, Bits: 64, Value: word, Tag: "KEY_BIT"},
		{Chain: jtag.ChainDR, Bits: 64, Value: 0, Tag: "KEY_BIT_WAIT"},
	}
}

// commitOps latches the burned configuration into the device. The sequence
// is constant regardless of which banks were touched.
var commitOps = []jtag.Op{
	{Chain: jtag.ChainDR, Bits: 64, Value: commitWord, Tag: "EFUSE_COMMIT"},
	{Chain: jtag.ChainIR, Bits: irBits, Value: CmdUser1, Tag: "USER1"},
	{Chain: jtag.ChainDR, Bits: 32, Value: 0, Tag: "USER1"},
	{Chain: jtag.ChainIR, Bits: irBits, Value: CmdUser1, Tag: "USER1"},
	{Chain: jtag.ChainDR, Bits: 17, Value: 0xF000, Tag: "USER1"},
	{Chain: jtag.ChainDR, Bits: 75, Value: 0xA9, Tag: "USER1"},
	{Chain: jtag.ChainIR, Bits: irBits, Value: CmdUser3, Tag: "USER3"},
	{Chain: jtag.ChainDR, Bits: 17, Value: 0xF000, Tag: "USER3"},
	{Chain: jtag.ChainDR, Bits: 75, Value: 0xA9, Tag: "USER3"},
	{Chain: jtag.ChainIR, Bits: irBits, Value: CmdBypass, Tag: "BYPASS"},
	{Chain: jtag.ChainIR, Bits: irBits, Value: CmdUser2, Tag: "USER2"},
	{Chain: jtag.ChainDR, Bits: 32, Value: 0, Tag: "USER2"},
	{Chain: jtag.ChainIR, Bits: irBits, Value: CmdBypass, Tag: "BYPASS"},
	{Chain: jtag.ChainIR, Bits: irBits, Value: CmdUser2, Tag: "USER2"},
	{Chain: jtag.ChainDR, Bits: 42, Value: 0x69, Tag: "USER2"},
	{Chain: jtag.ChainIR, Bits: irBits, Value: CmdBypass, Tag: "BYPASS"},
	{Chain: jtag.ChainIR, Bits: irBits, Value: CmdUser2, Tag: "USER2"},
	{Chain: jtag.ChainDR, Bits: 6, Value: 0xC, Tag: "USER2"},
	{Chain: jtag.ChainDR, Bits: 42, Value: 0x69, Tag: "USER2"},
	{Chain: jtag.ChainIR, Bits: irBits, Value: CmdBypass, Tag: "BYPASS"},
	{Chain: jtag.ChainIR, Bits: irBits, Value: CmdUser2, Tag: "USER2"},
	{Chain: jtag.ChainDR, Bits: 36, Value: 0, Tag: "USER2"},
}
