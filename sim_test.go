package dataflash

import (
	"fmt"
	"testing"
	"time"

	conn "periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
)

// chipSim models a SPI NOR chip behind an spi.Conn: an in-memory array
// with erase-before-program semantics, a status register with BUSY and
// WEL, deep power down, and an optional SFDP image. Commands arrive one
// per Tx call because the driver frames each command with its own
// chip-select assertion.
type chipSim struct {
	mem  []byte
	id   [3]byte
	sfdp []byte

	wel      bool
	deepDown bool
	busy     int // status reads remaining before BUSY clears
	busyPP   int // busy polls injected per page program
	busyER   int // busy polls injected per erase

	txCount int
	trace   []string // mnemonics in issue order
	failTx  error
}

var _ spi.Conn = (*chipSim)(nil)

func newSim(id [3]byte, size int) *chipSim {
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &chipSim{mem: mem, id: id, busyPP: 2, busyER: 3}
}

func (c *chipSim) String() string      { return "chipSim" }
func (c *chipSim) Duplex() conn.Duplex { return conn.Full }
func (c *chipSim) TxPackets(p []spi.Packet) error {
	return fmt.Errorf("chipSim: TxPackets not supported")
}

func addr24(w []byte) int {
	return int(w[1])<<16 | int(w[2])<<8 | int(w[3])
}

func opName(op byte) string {
	switch op {
	case cmdReadID:
		return "RDID"
	case cmdReadStatus:
		return "RDSR"
	case cmdWriteEnable:
		return "WREN"
	case cmdPageProgram:
		return "PP"
	case cmdErase4KB:
		return "SE4K"
	case cmdErase64KB:
		return "SE64K"
	case cmdEraseChip:
		return "CE"
	case cmdRead:
		return "READ"
	case cmdReadSFDP:
		return "SFDP"
	case cmdDeepPowerDown:
		return "DP"
	case cmdReleasePowerDown:
		return "RES"
	}
	return fmt.Sprintf("OP%02X", op)
}

func (c *chipSim) Tx(w, r []byte) error {
	if c.failTx != nil {
		return c.failTx
	}
	if len(w) == 0 {
		return fmt.Errorf("chipSim: empty transaction")
	}
	c.txCount++
	op := w[0]
	c.trace = append(c.trace, opName(op))

	// In deep power down the chip ignores everything but the release
	// command and shifts out all-ones.
	if c.deepDown && op != cmdReleasePowerDown {
		for i := 1; i < len(r); i++ {
			r[i] = 0xFF
		}
		return nil
	}

	switch op {
	case cmdReadID:
		copy(r[1:], c.id[:])
	case cmdReadStatus:
		var sr byte
		if c.busy > 0 {
			sr |= 1 << 0
			c.busy--
		}
		if c.wel {
			sr |= 1 << 1
		}
		if len(r) > 1 {
			r[1] = sr
		}
	case cmdWriteEnable:
		c.wel = true
	case cmdPageProgram:
		if !c.wel {
			return nil // ignored without the write-enable latch
		}
		addr := addr24(w)
		for i, b := range w[4:] {
			c.mem[addr+i] &= b // programming only clears bits
		}
		c.wel = false
		c.busy = c.busyPP
	case cmdErase4KB:
		c.eraseRange(addr24(w), 4<<10)
	case cmdErase64KB:
		c.eraseRange(addr24(w), 64<<10)
	case cmdEraseChip:
		c.eraseRange(0, len(c.mem))
	case cmdRead:
		copy(r[4:], c.mem[addr24(w):])
	case cmdReadSFDP:
		off := addr24(w)
		for i := 5; i < len(r); i++ {
			if j := off + i - 5; c.sfdp != nil && j < len(c.sfdp) {
				r[i] = c.sfdp[j]
			} else {
				r[i] = 0xFF
			}
		}
	case cmdDeepPowerDown:
		c.deepDown = true
	case cmdReleasePowerDown:
		c.deepDown = false
	}
	return nil
}

func (c *chipSim) eraseRange(addr, n int) {
	if !c.wel {
		return
	}
	for i := addr; i < addr+n && i < len(c.mem); i++ {
		c.mem[i] = 0xFF
	}
	c.wel = false
	c.busy = c.busyER
}

// sawInOrder reports whether the given mnemonics appear in the trace in
// the given order (not necessarily adjacent).
func (c *chipSim) sawInOrder(ops ...string) bool {
	i := 0
	for _, got := range c.trace {
		if i < len(ops) && got == ops[i] {
			i++
		}
	}
	return i == len(ops)
}

func (c *chipSim) count(op string) int {
	n := 0
	for _, got := range c.trace {
		if got == op {
			n++
		}
	}
	return n
}

// newTestFlash builds a Flash over the simulator with test pins and a
// no-op settle hook.
func newTestFlash(t *testing.T, sim *chipSim) *Flash {
	t.Helper()
	f := NewFlash(sim, &gpiotest.Pin{N: "CS"}, &gpiotest.Pin{N: "WP"})
	f.sleep = func(d time.Duration) {}
	return f
}
