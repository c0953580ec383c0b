package idcode

// parts maps 7-series part numbers (IDCODE bits [27:12]) to device names.
// The list follows the production devices of the four families; engineering
// samples and speed-grade variants report the same part number.
var parts = map[uint16]string{
	// Spartan-7
	0x3622: "XC7S6",
	0x3620: "XC7S15",
	0x37C4: "XC7S25",
	0x362F: "XC7S50",
	0x37C8: "XC7S75",
	0x37C7: "XC7S100",

	// Artix-7
	0x362E: "XC7A15T",
	0x37C2: "XC7A25T",
	0x362D: "XC7A35T",
	0x362C: "XC7A50T",
	0x3632: "XC7A75T",
	0x3631: "XC7A100T",
	0x3636: "XC7A200T",

	// Kintex-7
	0x3647: "XC7K70T",
	0x364C: "XC7K160T",
	0x3651: "XC7K325T",
	0x3656: "XC7K410T",

	// Zynq-7000
	0x3722: "XC7Z010",
	0x3727: "XC7Z020",
	0x372C: "XC7Z030",
	0x3731: "XC7Z045",
}

// PartName returns the 7-series device name for a part number, or "" when
// the part is not a known 7-series device.
func PartName(part uint16) string {
	return parts[part]
}
