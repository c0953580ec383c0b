package jtag

import (
	"fmt"
	"log"
	"sync"
)

// CMSISDAP drives the TAP one TCK cycle at a time through a CMSIS-DAP probe.
// Every Clock is a full USB round trip, which matches the strictly
// synchronous transport model: a shift-out is always immediately followed by
// its shift-in.
type CMSISDAP struct {
	link *usbLink

	mu sync.Mutex
}

// OpenCMSISDAP opens the probe with the given USB IDs, connects its JTAG
// port and sets the default 1 MHz TCK clock.
func OpenCMSISDAP(vid, pid uint16) (*CMSISDAP, error) {
	link, err := openUSBLink(vid, pid)
	if err != nil {
		return nil, err
	}
	d := &CMSISDAP{link: link}

	if fw, err := d.info(infoFirmwareVer); err == nil && fw != "" {
		log.Printf("cmsisdap: probe firmware %q", fw)
	}

	if err := d.connect(); err != nil {
		link.close()
		return nil, err
	}
	if err := d.SetClock(1_000_000); err != nil {
		link.close()
		return nil, err
	}
	return d, nil
}

func (d *CMSISDAP) info(id byte) (string, error) {
	resp, err := d.link.writeRead(encodeInfo(id))
	if err != nil {
		return "", err
	}
	return decodeInfoString(resp)
}

func (d *CMSISDAP) connect() error {
	resp, err := d.link.writeRead(encodeConnect(portJTAG))
	if err != nil {
		return err
	}
	port, err := decodeConnect(resp)
	if err != nil {
		return err
	}
	if port != portJTAG {
		return fmt.Errorf("jtag: probe connected port %d, want JTAG", port)
	}
	log.Printf("cmsisdap: JTAG port connected")
	return nil
}

// Clock performs one TCK cycle via a single-cycle DAP_JTAG_Sequence with TDO
// capture.
func (d *CMSISDAP) Clock(tdi, tms bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data := []byte{0}
	if tdi {
		data[0] = 1
	}
	resp, err := d.link.writeRead(encodeSequence(1, tms, true, data))
	if err != nil {
		return false, err
	}
	tdo, err := decodeSequenceTDO(resp, 1)
	if err != nil {
		return false, err
	}
	return tdo[0]&1 != 0, nil
}

// SetClock sets the probe's TCK frequency in Hertz.
func (d *CMSISDAP) SetClock(hz uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp, err := d.link.writeRead(encodeSWJClock(hz))
	if err != nil {
		return err
	}
	return decodeStatus(resp, dapSWJClock)
}

// Close disconnects the probe's JTAG port and releases the USB resources.
func (d *CMSISDAP) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.link == nil {
		return nil
	}
	// Best effort; the probe may already be gone.
	if resp, err := d.link.writeRead(encodeDisconnect()); err == nil {
		_ = decodeStatus(resp, dapDisconnect)
	}
	err := d.link.close()
	d.link = nil
	return err
}
