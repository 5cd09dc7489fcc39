// Package ddc talks DDC/CI to monitors over the i2c device nodes. It reads
// and writes VCP feature 0x60 (input source) directly on the display cable.
package ddc

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const (
	ddcAddr  = 0x37 // DDC/CI slave address
	edidAddr = 0x50 // EDID EEPROM slave address
	hostAddr = 0x51 // source address byte in DDC/CI packets

	// VCPInputSource is the MCCS feature code for the active input.
	VCPInputSource = 0x60

	// replyDelay is how long the monitor gets to prepare a GetVCP reply.
	replyDelay = 50 * time.Millisecond

	// i2cSlave is the I2C_SLAVE ioctl request from linux/i2c-dev.h, which
	// golang.org/x/sys/unix does not export.
	i2cSlave = 0x0703
)

// Bus is one /dev/i2c-N device node carrying a monitor's DDC channel. The
// node is a scarce, non-reentrant resource: every operation opens it, holds
// it for the duration of one exchange and closes it on all exit paths.
type Bus struct {
	Path string
}

func (b Bus) String() string { return b.Path }

// GetVCP reads the current value of a VCP feature.
func (b Bus) GetVCP(code byte) (uint16, error) {
	f, err := b.open(ddcAddr)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	req := []byte{hostAddr, 0x82, 0x01, code}
	req = append(req, checksum(req))
	if _, err := f.Write(req); err != nil {
		return 0, fmt.Errorf("ddc get request on %s: %w", b.Path, err)
	}

	time.Sleep(replyDelay)

	reply := make([]byte, 16)
	n, err := f.Read(reply)
	if err != nil {
		return 0, fmt.Errorf("ddc get reply on %s: %w", b.Path, err)
	}
	return parseVCPReply(reply[:n], code)
}

// SetVCP writes a VCP feature value. Set failures are surfaced immediately;
// re-issuing a physical switch command blindly is unsafe, so callers must
// not retry.
func (b Bus) SetVCP(code byte, value uint16) error {
	f, err := b.open(ddcAddr)
	if err != nil {
		return err
	}
	defer f.Close()

	msg := []byte{hostAddr, 0x84, 0x03, code, byte(value >> 8), byte(value & 0xFF)}
	msg = append(msg, checksum(msg))
	if _, err := f.Write(msg); err != nil {
		return fmt.Errorf("ddc set on %s: %w", b.Path, err)
	}
	return nil
}

// ReadEDID returns the display's 128-byte base EDID block, or an error if the
// bus has no display behind it.
func (b Bus) ReadEDID() ([]byte, error) {
	f, err := b.open(edidAddr)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	edid := make([]byte, 128)
	if _, err := f.Read(edid); err != nil {
		return nil, fmt.Errorf("edid read on %s: %w", b.Path, err)
	}
	if !validEDIDHeader(edid) {
		return nil, fmt.Errorf("no EDID on %s", b.Path)
	}
	return edid, nil
}

func (b Bus) open(addr int) (*os.File, error) {
	f, err := os.OpenFile(b.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", b.Path, err)
	}
	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlave, addr); err != nil {
		f.Close()
		return nil, fmt.Errorf("select slave 0x%02x on %s: %w", addr, b.Path, err)
	}
	return f, nil
}

// checksum is the DDC/CI XOR checksum, seeded with the destination address.
func checksum(data []byte) byte {
	var c byte = 0x6E
	for _, b := range data {
		c ^= b
	}
	return c
}

// parseVCPReply extracts the current value from a GetVCP reply. Monitors
// differ in how much framing they prepend, so the reply is scanned for the
// feature-reply opcode first, with a positional fallback for well-framed
// packets.
func parseVCPReply(reply []byte, code byte) (uint16, error) {
	for i := 0; i+7 < len(reply); i++ {
		if reply[i] == 0x02 && reply[i+2] == code {
			return uint16(reply[i+6])<<8 | uint16(reply[i+7]), nil
		}
	}
	if len(reply) >= 10 && reply[0] == 0x6E {
		return uint16(reply[8])<<8 | uint16(reply[9]), nil
	}
	return 0, fmt.Errorf("unparseable VCP reply (%d bytes)", len(reply))
}

func validEDIDHeader(edid []byte) bool {
	if len(edid) < 8 {
		return false
	}
	header := []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}
	for i, b := range header {
		if edid[i] != b {
			return false
		}
	}
	return true
}
