package jtag

import "fmt"

// Chain selects which TAP register a shift targets.
type Chain uint8

const (
	ChainIR Chain = iota
	ChainDR
)

func (c Chain) String() string {
	switch c {
	case ChainIR:
		return "IR"
	case ChainDR:
		return "DR"
	}
	return fmt.Sprintf("Chain(%d)", uint8(c))
}

// Leg is one queued shift request: a target chain, a human-readable tag for
// diagnostics, and an ordered bit payload. Sub-fields of varying width can be
// pushed and popped in either bit order; the first pushed bit is the first
// bit on the wire (TDI) and, for responses, the first bit captured (TDO).
type Leg struct {
	Chain Chain
	Tag   string

	bits []bool
	pos  int
}

// NewLeg returns an empty leg for the given chain.
func NewLeg(chain Chain, tag string) *Leg {
	return &Leg{Chain: chain, Tag: tag}
}

// Len reports the total payload length in bits.
func (l *Leg) Len() int {
	return len(l.bits)
}

// Remaining reports how many bits are left to pop.
func (l *Leg) Remaining() int {
	return len(l.bits) - l.pos
}

// Rewind moves the pop cursor back to the first bit so the payload can be
// decoded again under a different field layout.
func (l *Leg) Rewind() {
	l.pos = 0
}

// PushLittle appends n bits of v least-significant first. Widths above 64
// zero-extend, which is how all-zero readback payloads are built.
func (l *Leg) PushLittle(v uint64, n int) {
	for i := 0; i < n; i++ {
		l.bits = append(l.bits, i < 64 && v>>uint(i)&1 != 0)
	}
}

// PushBig appends n bits of v most-significant first.
func (l *Leg) PushBig(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		l.bits = append(l.bits, i < 64 && v>>uint(i)&1 != 0)
	}
}

// PopLittle consumes up to n bits from the cursor and returns them with the
// first consumed bit in the result's bit 0. Popping past the end yields zero
// bits, so short responses decode as zeroes rather than faulting here.
func (l *Leg) PopLittle(n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		if l.pop() && i < 64 {
			v |= 1 << uint(i)
		}
	}
	return v
}

// PopBig consumes up to n bits from the cursor with the first consumed bit
// as the result's most significant.
func (l *Leg) PopBig(n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v <<= 1
		if l.pop() {
			v |= 1
		}
	}
	return v
}

func (l *Leg) pop() bool {
	if l.pos >= len(l.bits) {
		return false
	}
	b := l.bits[l.pos]
	l.pos++
	return b
}
