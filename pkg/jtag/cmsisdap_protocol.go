package jtag

import (
	"encoding/binary"
	"fmt"
)

// CMSIS-DAP command IDs.
const (
	dapInfo         = 0x00
	dapConnect      = 0x02
	dapDisconnect   = 0x03
	dapSWJClock     = 0x11
	dapJTAGSequence = 0x14
)

// DAP_Info info IDs.
const (
	infoVendorName  = 0x01
	infoProductName = 0x02
	infoSerialNum   = 0x03
	infoFirmwareVer = 0x04
)

// DAP_Connect ports and the shared status byte.
const (
	portJTAG = 2
	dapOK    = 0x00
)

// DAP_JTAG_Sequence info byte layout: TCK count in [5:0] (0 encodes 64),
// TMS level in bit 6, TDO capture request in bit 7.
const (
	seqTCKMask = 0x3F
	seqTMS     = 0x40
	seqTDO     = 0x80
)

func encodeInfo(id byte) []byte {
	return []byte{dapInfo, id}
}

func decodeInfoString(resp []byte) (string, error) {
	if len(resp) < 2 {
		return "", fmt.Errorf("jtag: info response too short")
	}
	if resp[0] != dapInfo {
		return "", fmt.Errorf("jtag: info response has command 0x%02X", resp[0])
	}
	n := int(resp[1])
	if len(resp) < 2+n {
		return "", fmt.Errorf("jtag: info string truncated")
	}
	// Probes commonly include the NUL terminator in the length.
	s := resp[2 : 2+n]
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return string(s), nil
}

func encodeConnect(port byte) []byte {
	return []byte{dapConnect, port}
}

func decodeConnect(resp []byte) (byte, error) {
	if len(resp) < 2 {
		return 0, fmt.Errorf("jtag: connect response too short")
	}
	if resp[0] != dapConnect {
		return 0, fmt.Errorf("jtag: connect response has command 0x%02X", resp[0])
	}
	if resp[1] == 0 {
		return 0, fmt.Errorf("jtag: probe refused connection")
	}
	return resp[1], nil
}

func encodeDisconnect() []byte {
	return []byte{dapDisconnect}
}

func encodeSWJClock(hz uint32) []byte {
	cmd := make([]byte, 5)
	cmd[0] = dapSWJClock
	binary.LittleEndian.PutUint32(cmd[1:], hz)
	return cmd
}

// decodeStatus checks the generic [command, status] response shape used by
// DAP_Disconnect and DAP_SWJ_Clock.
func decodeStatus(resp []byte, cmd byte) error {
	if len(resp) < 2 {
		return fmt.Errorf("jtag: response too short for command 0x%02X", cmd)
	}
	if resp[0] != cmd {
		return fmt.Errorf("jtag: response command 0x%02X, want 0x%02X", resp[0], cmd)
	}
	if resp[1] != dapOK {
		return fmt.Errorf("jtag: command 0x%02X failed with status 0x%02X", cmd, resp[1])
	}
	return nil
}

// encodeSequence builds a DAP_JTAG_Sequence command holding a single
// sequence: cycles TCK pulses at a fixed TMS level, shifting tdi (LSB of
// tdi[0] first) and optionally capturing TDO.
func encodeSequence(cycles int, tms, capture bool, tdi []byte) []byte {
	info := byte(cycles & seqTCKMask) // 64 wraps to 0, which encodes 64
	if tms {
		info |= seqTMS
	}
	if capture {
		info |= seqTDO
	}
	cmd := make([]byte, 3+len(tdi))
	cmd[0] = dapJTAGSequence
	cmd[1] = 1
	cmd[2] = info
	copy(cmd[3:], tdi)
	return cmd
}

// decodeSequenceTDO extracts n bytes of captured TDO data from a
// DAP_JTAG_Sequence response.
func decodeSequenceTDO(resp []byte, n int) ([]byte, error) {
	if len(resp) < 2 {
		return nil, fmt.Errorf("jtag: sequence response too short")
	}
	if resp[0] != dapJTAGSequence {
		return nil, fmt.Errorf("jtag: sequence response has command 0x%02X", resp[0])
	}
	if resp[1] != dapOK {
		return nil, fmt.Errorf("jtag: sequence failed with status 0x%02X", resp[1])
	}
	if len(resp) < 2+n {
		return nil, fmt.Errorf("jtag: sequence TDO data truncated")
	}
	return resp[2 : 2+n], nil
}
