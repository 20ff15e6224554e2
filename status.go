package dataflash

import (
	"fmt"
	"strings"
	"time"
)

// StatusRegister is a transient snapshot of the chip's status register,
// read fresh on every poll and never cached across calls.
//
//	Bits| [N25Q32|Table 9]                     | [W25Q128|7.1 Status Registers]
//	----+--------------------------------------+-------------------------------
//	7   | Status register write enable/disable | SRP: Status Register Protect
//	6   | Reserved                             | SEC: Sector protect
//	5   | Top/bottom                           | TB: Top/Bottom protect
//	4:2 | Block protect 2-0                    | BP2-0: Block Protect bit 2-0
//	1   | Write enable latch                   | WEL: Write Enable Latch
//	0   | Write in progress                    | BUSY: Erase/Write in progress
type StatusRegister byte

func (sr StatusRegister) StatusRegisterProtect() bool { return sr&(1<<7) != 0 }
func (sr StatusRegister) SectorProtect() bool         { return sr&(1<<6) != 0 }
func (sr StatusRegister) TopBottom() bool             { return sr&(1<<5) != 0 }
func (sr StatusRegister) BlockProtect2() bool         { return sr&(1<<4) != 0 }
func (sr StatusRegister) BlockProtect1() bool         { return sr&(1<<3) != 0 }
func (sr StatusRegister) BlockProtect0() bool         { return sr&(1<<2) != 0 }
func (sr StatusRegister) WriteEnabled() bool          { return sr&(1<<1) != 0 }
func (sr StatusRegister) Busy() bool                  { return sr&(1<<0) != 0 }

func (sr StatusRegister) String() string {
	b := fmt.Sprintf("%08b", byte(sr))
	s := []string{}
	if sr.StatusRegisterProtect() {
		s = append(s, "SRP")
	}
	if sr.SectorProtect() {
		s = append(s, "SEC")
	}
	if sr.TopBottom() {
		s = append(s, "TB")
	}
	if sr.BlockProtect2() {
		s = append(s, "BP2")
	}
	if sr.BlockProtect1() {
		s = append(s, "BP1")
	}
	if sr.BlockProtect0() {
		s = append(s, "BP0")
	}
	if sr.WriteEnabled() {
		s = append(s, "WEL")
	}
	if sr.Busy() {
		s = append(s, "BUSY")
	}
	if len(s) == 0 {
		return b
	}
	return b + " " + strings.Join(s, ",")
}

// ReadStatusRegister reads the status register once.
func (f *Flash) ReadStatusRegister() (StatusRegister, error) {
	buf := []byte{cmdReadStatus, 0}
	if err := f.tx(buf); err != nil {
		return 0, err
	}
	return StatusRegister(buf[1]), nil
}

// Bound applied when a caller passes no usable timeout. A stuck or
// removed chip must never hang the caller forever.
const defaultBusyTimeout = time.Second

// waitUntilIdle polls the status register until the busy bit clears,
// returning ErrBusyTimeout once timeout expires. A non-positive
// timeout is replaced by defaultBusyTimeout, never by an unbounded
// wait.
func (f *Flash) waitUntilIdle(timeout time.Duration) error {
	// Fast path
	sr, err := f.ReadStatusRegister()
	if err != nil {
		return fmt.Errorf("%w: read status: %v", ErrCommunicationFailure, err)
	}
	if !sr.Busy() {
		return nil
	}

	if timeout <= 0 {
		timeout = defaultBusyTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timer.C:
			return fmt.Errorf("%w: still busy after %v", ErrBusyTimeout, timeout)
		case <-ticker.C:
			sr, err := f.ReadStatusRegister()
			if err != nil {
				return fmt.Errorf("%w: read status: %v", ErrCommunicationFailure, err)
			}
			if !sr.Busy() {
				return nil
			}
		}
	}
}
