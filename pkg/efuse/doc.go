// Package efuse reads, validates and programs the one-time-programmable
// eFuse array of Xilinx 7-series FPGAs over JTAG.
//
// Fuses only ever transition 0→1. The package therefore splits the work
// into a read-only snapshot of what is already burned (Phy), a desired
// logical configuration (Config), and a Burner that proves the desired
// state is reachable without clearing any burned bit before it emits a
// single programming word.
//
// # Bank layout
//
// The array is organised as 13 physical banks:
//
//   - Bank 0 carries the six CNTL bits with each bit duplicated 14
//     positions up instead of ECC.
//   - Banks 1 through 10 each carry 24 bits of the 256-bit AES key,
//     ECC-coded to 30 bits.
//   - Bank 11 is shared: 16 key bits in its low half and the low byte of
//     the USER word in bits [23:16], ECC-coded as one unit.
//   - Bank 12 carries the upper 24 bits of the USER word, ECC-coded.
//
// The ECC transform lives in the ecc package; this package treats it as an
// opaque pure function.
//
// # Usage
//
// A typical session fetches, validates and only then burns:
//
//	dev, err := jtag.OpenCMSISDAP(jtag.DefaultVendorID, jtag.DefaultProductID)
//	if err != nil {
//		return err
//	}
//	defer dev.Close()
//
//	m := jtag.NewMach()
//	var phy efuse.Phy
//	if err := phy.Fetch(m, dev); err != nil {
//		return err
//	}
//
//	var cfg efuse.Config
//	cfg.SetUser(0x12345678)
//	cfg.SetCntl(efuse.CntlCfgAESOnly)
//
//	b := efuse.NewBurner(&phy, &cfg)
//	for bank, st := range b.Plan() {
//		fmt.Printf("bank %2d: %08x -> %08x burn %08x\n",
//			bank, st.Physical, st.Desired, st.Burn)
//	}
//	if err := b.Burn(m, dev); err != nil {
//		return err
//	}
//
// # Safety
//
// Burn re-validates the full configuration and refuses with
// ErrInvalidConfig, before any hardware traffic, if a single bank would
// need a 1→0 transition. There is no interruption point inside a bank's
// bit loop and no rollback after it: a transport fault mid-burn leaves the
// device in whatever state the completed words produced, and the only safe
// recovery is a fresh Fetch.
//
// # Simulator
//
// Sim implements the same one-cycle driver contract as the real probes and
// decodes the programming words with the documented unlock and bank-select
// framing, so the full fetch/validate/burn cycle runs in tests without a
// device on the bench.
package efuse
