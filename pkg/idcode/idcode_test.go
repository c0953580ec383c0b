package idcode

import (
	"strings"
	"testing"

	"github.com/tpterovtt/betrusted-soc/pkg/efuse"
	"github.com/tpterovtt/betrusted-soc/pkg/jtag"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  uint32
		want IDCode
	}{
		{
			name: "XC7S50",
			raw:  0x0362F093,
			want: IDCode{
				Raw:          0x0362F093,
				Version:      0,
				Part:         0x362F,
				Manufacturer: ManufacturerXilinx,
				Marked:       true,
			},
		},
		{
			name: "XC7A35T rev 1",
			raw:  0x1362D093,
			want: IDCode{
				Raw:          0x1362D093,
				Version:      1,
				Part:         0x362D,
				Manufacturer: ManufacturerXilinx,
				Marked:       true,
			},
		},
		{
			name: "RP2040 is not Xilinx",
			raw:  0x10002927,
			want: IDCode{
				Raw:          0x10002927,
				Version:      1,
				Part:         0x0002,
				Manufacturer: 0x493,
				Marked:       true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if got != tt.want {
				t.Errorf("Parse(%#x) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsXilinx(t *testing.T) {
	if !Parse(0x0362F093).IsXilinx() {
		t.Error("IsXilinx() = false for an XC7S50 code")
	}
	if Parse(0x10002927).IsXilinx() {
		t.Error("IsXilinx() = true for an RP2040 code")
	}
}

func TestString(t *testing.T) {
	got := Parse(0x1362D093).String()
	for _, want := range []string{"Xilinx", "XC7A35T", "rev 1", "0x1362d093"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}

	unknown := Parse(0x12345675).String()
	if !strings.Contains(unknown, "part 0x2345") {
		t.Errorf("String() = %q, missing raw part number", unknown)
	}
}

func TestManufacturerName(t *testing.T) {
	if got := ManufacturerName(ManufacturerXilinx); got != "Xilinx" {
		t.Errorf("ManufacturerName(0x049) = %q, want Xilinx", got)
	}
	if got := ManufacturerName(0x7FF); !strings.Contains(got, "0x7ff") {
		t.Errorf("ManufacturerName(0x7ff) = %q, want the code included", got)
	}
}

func TestReadFromSimulator(t *testing.T) {
	sim := efuse.NewSim()
	sim.IDCode = 0x0362D093

	m := jtag.NewMach()
	code, err := Read(m, sim)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if code.Raw != 0x0362D093 {
		t.Errorf("Read() = %#x, want 0x0362d093", code.Raw)
	}
	if !code.IsXilinx() {
		t.Error("Read() manufacturer is not Xilinx")
	}
}

func TestReadStuckLines(t *testing.T) {
	tests := []struct {
		name string
		tdo  bool
	}{
		{"stuck low", false},
		{"stuck high", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := jtag.DriverFunc(func(tdi, tms bool) (bool, error) {
				return tt.tdo, nil
			})
			m := jtag.NewMach()
			if _, err := Read(m, dev); err == nil {
				t.Error("Read() error = nil on a stuck line")
			}
		})
	}
}
