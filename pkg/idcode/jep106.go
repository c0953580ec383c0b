package idcode

import "fmt"

// manufacturers covers the JEP106 identities likely to show up on a JTAG
// header near an FPGA. Codes above 0xFF encode the continuation count in
// the upper bits, the way IDCODE packs them.
var manufacturers = map[uint16]string{
	0x001: "AMD",
	0x004: "Fujitsu",
	0x007: "Hitachi",
	0x009: "Intel",
	0x015: "NXP (Philips)",
	0x017: "Texas Instruments",
	0x01F: "Atmel",
	0x020: "STMicroelectronics",
	0x021: "Lattice",
	0x029: "Microchip",
	0x049: "Xilinx",
	0x06E: "Altera",
	0x23B: "Arm",
	0x493: "Raspberry Pi",
}

// ManufacturerName resolves a JEP106 code to a display name.
func ManufacturerName(code uint16) string {
	if name, ok := manufacturers[code]; ok {
		return name
	}
	return fmt.Sprintf("unknown manufacturer 0x%03x", code)
}
