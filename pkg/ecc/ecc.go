// Package ecc implements the Hamming-style code the 7-series eFuse array
// applies to KEY and USER banks.
//
// A coded bank word is 30 bits wide. Raw data occupies bits [23:0], five
// check bits occupy [28:24] and bit 29 holds even parity over the whole
// word. The check field is the XOR of the Hamming columns of every set
// data bit.
package ecc

import (
	"fmt"
	"math/bits"
)

// DataMask covers the raw data bits of a coded word.
const DataMask = 0xFFFFFF

// columns assigns each data bit its Hamming column, the integers 3 through
// 29 with powers of two skipped.
var columns = [24]uint32{
	3, 5, 6, 7,
	9, 10, 11, 12, 13, 14, 15,
	17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29,
}

// Encode returns the coded word for a 24-bit raw value. It panics if raw
// has bits set above bit 23, which is a programmer error rather than a
// hardware condition.
func Encode(raw uint32) uint32 {
	if raw&^DataMask != 0 {
		panic(fmt.Sprintf("ecc: value %#x exceeds 24 data bits", raw))
	}

	var checks uint32
	for i, col := range columns {
		if raw>>uint(i)&1 == 1 {
			checks ^= col
		}
	}

	word := raw | checks<<24
	if bits.OnesCount32(word)%2 == 1 {
		word |= 1 << 29
	}
	return word
}
