// Package idcode reads and decodes IEEE 1149.1 device identification
// codes. The fields of interest here are the JEP106 manufacturer, used to
// refuse eFuse operations on non-Xilinx silicon, and the part number,
// mapped to 7-series device names.
package idcode

import "fmt"

// ManufacturerXilinx is the JEP106 code carried by every Xilinx IDCODE
// (they all end in 0x093).
const ManufacturerXilinx = 0x049

// IDCode is a parsed 32-bit identification code.
type IDCode struct {
	Raw          uint32
	Version      uint8  // [31:28] die revision
	Part         uint16 // [27:12] part number
	Manufacturer uint16 // [11:1] JEP106 identity
	Marked       bool   // bit 0, always 1 for a real IDCODE register
}

// Parse splits a raw IDCODE into its fields.
func Parse(raw uint32) IDCode {
	return IDCode{
		Raw:          raw,
		Version:      uint8(raw >> 28 & 0xF),
		Part:         uint16(raw >> 12 & 0xFFFF),
		Manufacturer: uint16(raw >> 1 & 0x7FF),
		Marked:       raw&1 == 1,
	}
}

// IsXilinx reports whether the code names Xilinx as the manufacturer.
func (c IDCode) IsXilinx() bool {
	return c.Manufacturer == ManufacturerXilinx
}

func (c IDCode) String() string {
	part := PartName(c.Part)
	if part == "" {
		part = fmt.Sprintf("part 0x%04x", c.Part)
	}
	return fmt.Sprintf("%s %s rev %d (0x%08x)",
		ManufacturerName(c.Manufacturer), part, c.Version, c.Raw)
}
