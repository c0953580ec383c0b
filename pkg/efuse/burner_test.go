package efuse

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/tpterovtt/betrusted-soc/pkg/ecc"
	"github.com/tpterovtt/betrusted-soc/pkg/jtag"
)

func randomConfig(rng *rand.Rand) *Config {
	var cfg Config
	var key [32]byte
	rng.Read(key[:])
	cfg.SetKey(key)
	cfg.SetUser(rng.Uint32())
	// Keep at least one CNTL bit clear so corruption tests always have a
	// position to flip.
	cfg.SetCntl(uint8(rng.Intn(63)))
	return &cfg
}

func TestDesiredPacking(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(i)
	}
	var cfg Config
	cfg.SetKey(key)
	cfg.SetUser(0xAABBCCDD)
	cfg.SetCntl(0x2A)

	var phy Phy
	plan := NewBurner(&phy, &cfg).Plan()

	tests := []struct {
		name string
		bank int
		want uint32
	}{
		{"cntl duplicated", 0, 0x2A | 0x2A<<14},
		{"first key bank", 1, ecc.Encode(0x020100)},
		{"middle key bank", 5, ecc.Encode(0x0E0D0C)},
		{"last full key bank", 10, ecc.Encode(0x1D1C1B)},
		{"shared key/user bank", 11, ecc.Encode(0xDD1F1E)},
		{"user bank", 12, ecc.Encode(0xAABBCC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := plan[tt.bank].Desired; got != tt.want {
				t.Errorf("bank %d desired = %#x, want %#x", tt.bank, got, tt.want)
			}
		})
	}
}

func TestNoOpConfigurationIsValid(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 50; iter++ {
		cfg := randomConfig(rng)
		var phy Phy
		b := NewBurner(&phy, cfg)
		for bank, st := range b.Plan() {
			phy.Banks[bank] = st.Desired
		}
		if !b.IsValid() {
			t.Fatalf("iter %d: IsValid() = false for an already-burned configuration", iter)
		}
		for bank, st := range b.Plan() {
			if st.Burn != 0 {
				t.Fatalf("iter %d: bank %d burn mask = %#x, want 0", iter, bank, st.Burn)
			}
		}
	}
}

func TestIsValidCatchesClearedBits(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for iter := 0; iter < 200; iter++ {
		cfg := randomConfig(rng)

		var phy Phy
		b := NewBurner(&phy, cfg)
		for bank, st := range b.Plan() {
			phy.Banks[bank] = st.Desired
		}

		// Set one physical bit the configuration does not ask for. For
		// bank 0 stay inside the checked CNTL positions.
		bank := rng.Intn(13)
		width := 30
		if bank == 0 {
			width = 6
		}
		des := b.Plan()[bank].Desired
		var bit int
		for {
			bit = rng.Intn(width)
			if des>>uint(bit)&1 == 0 {
				break
			}
		}
		phy.Banks[bank] |= 1 << uint(bit)

		if b.IsValid() {
			t.Fatalf("iter %d: extra physical bit %d in bank %d not caught", iter, bit, bank)
		}
		if b.Plan()[bank].Valid {
			t.Fatalf("iter %d: bank %d still reports valid", iter, bank)
		}
	}
}

func TestBurnDeltas(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 200; iter++ {
		cfg := randomConfig(rng)

		// A physical state reachable from blank: the desired image with
		// some bits still unburned.
		var phy Phy
		b := NewBurner(&phy, cfg)
		for bank, st := range b.Plan() {
			phy.Banks[bank] = st.Desired &^ rng.Uint32()
		}

		if !b.IsValid() {
			t.Fatalf("iter %d: subset state rejected", iter)
		}
		for bank, st := range b.Plan() {
			phys := phy.Banks[bank]
			if st.Burn&phys != 0 {
				t.Fatalf("iter %d: bank %d mask %#x re-burns set bits of %#x", iter, bank, st.Burn, phys)
			}
			if phys|st.Burn != st.Desired {
				t.Fatalf("iter %d: bank %d mask %#x does not reach %#x from %#x", iter, bank, st.Burn, st.Desired, phys)
			}
		}
	}
}

func TestBurnFailClosed(t *testing.T) {
	var phy Phy
	phy.Banks[5] = ecc.Encode(0x000001)

	var cfg Config // all zero: would need bank 5 cleared
	b := NewBurner(&phy, &cfg)
	if b.IsValid() {
		t.Fatal("IsValid() = true for a configuration clearing burned bits")
	}

	var clocks int
	dev := jtag.DriverFunc(func(tdi, tms bool) (bool, error) {
		clocks++
		return false, nil
	})
	m := jtag.NewMach()
	if err := b.Burn(m, dev); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Burn() error = %v, want %v", err, ErrInvalidConfig)
	}
	if clocks != 0 {
		t.Fatalf("Burn() issued %d clock cycles on invalid input, want 0", clocks)
	}
}

func TestCntlDuplication(t *testing.T) {
	var phy Phy
	var cfg Config
	cfg.SetCntl(0b101)

	plan := NewBurner(&phy, &cfg).Plan()
	if want := uint32(0b101 | 0b101<<14); plan[0].Burn != want {
		t.Fatalf("bank 0 burn mask = %#x, want %#x", plan[0].Burn, want)
	}
	if !plan[0].Valid {
		t.Fatal("bank 0 reported invalid from a blank device")
	}
}

func TestCntlUndocumentedBitsIgnored(t *testing.T) {
	// Bits [13:6] of the CNTL readback are undocumented and must not block
	// validation.
	var phy Phy
	phy.Banks[0] = 0x3 | 0x1C0 | 0x3<<14

	var cfg Config
	cfg.SetCntl(0x3)

	st := NewBurner(&phy, &cfg).Plan()[0]
	if !st.Valid {
		t.Fatal("undocumented CNTL bits blocked validation")
	}
	if st.Burn != 0 {
		t.Fatalf("bank 0 burn mask = %#x, want 0", st.Burn)
	}
}

func TestSharedBankValidation(t *testing.T) {
	// Physical state: user = 0x00000001, key bytes 30 and 31 blank, so
	// bank 11 holds Encode(0x010000) = 0x16010000 (check bits 25, 26, 28).
	tests := []struct {
		name        string
		user        uint32
		key30       byte
		key31       byte
		wantDesired uint32
		valid       bool
	}{
		{
			name:        "added user bit and key byte 31 drop check bit 28",
			user:        0x00000003,
			key31:       0x02,
			wantDesired: 0x2F030200,
			valid:       false,
		},
		{
			name:        "added key byte 30 grows the check field",
			user:        0x00000001,
			key30:       0x10,
			wantDesired: 0x3F010010,
			valid:       true,
		},
		{
			name:        "identical configuration",
			user:        0x00000001,
			wantDesired: 0x16010000,
			valid:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var phy Phy
			phy.Banks[11] = ecc.Encode(0x010000)
			phy.User = 0x00000001
			if phy.Banks[11] != 0x16010000 {
				t.Fatalf("Encode(0x010000) = %#x, want 0x16010000", phy.Banks[11])
			}

			var cfg Config
			var key [32]byte
			key[30], key[31] = tt.key30, tt.key31
			cfg.SetKey(key)
			cfg.SetUser(tt.user)

			st := NewBurner(&phy, &cfg).Plan()[11]
			if st.Desired != tt.wantDesired {
				t.Errorf("bank 11 desired = %#x, want %#x", st.Desired, tt.wantDesired)
			}
			if st.Valid != tt.valid {
				t.Errorf("bank 11 valid = %v (physical %#x, desired %#x), want %v",
					st.Valid, st.Physical, st.Desired, tt.valid)
			}
		})
	}
}
