package dataflash

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Flash commands:
//   - [N25Q32|Table 16: Command Set]
//   - [W25Q128|8.1.2 Instruction Set Table 1]
//   - [MX25R64|Table 6. Command Sets]
const (
	cmdReleasePowerDown = 0xAB
	cmdDeepPowerDown    = 0xB9
	cmdReadID           = 0x9F
	cmdReadSFDP         = 0x5A
	cmdRead             = 0x03
	cmdWriteEnable      = 0x06
	cmdPageProgram      = 0x02
	cmdErase4KB         = 0x20 // Subsector Erase / Sector Erase (4KB)
	cmdErase64KB        = 0xD8 // Sector Erase / Block Erase (64KB)
	cmdEraseChip        = 0xC7 // Bulk Erase / Chip Erase
	cmdReadStatus       = 0x05
)

const sectorSize = 64 << 10

// Flash is a block-device driver for a single SPI NOR chip. It owns the
// bus connection and the chip-select and write-protect lines for its
// whole lifetime; one instance per chip, no sharing.
//
// Flash implements BlockDevice. It is not safe for concurrent use.
type Flash struct {
	conn spi.Conn
	cs   gpio.PinIO
	wp   gpio.PinIO // optional, held high (protection inactive)

	id   [3]byte // JEDEC ID of the flash chip
	name string
	pr   *flashParams
	geom DeviceGeometry

	state powerState
	ready bool

	pollInterval time.Duration
	sleep        func(time.Duration) // settle hook, time.Sleep outside tests
}

var _ BlockDevice = (*Flash)(nil)

// NewFlash wraps an SPI connection and its chip-select line. wp may be
// nil if the write-protect line is strapped in hardware. The returned
// Flash must be Init'ed before use.
func NewFlash(conn spi.Conn, cs, wp gpio.PinIO) *Flash {
	return &Flash{
		conn:         conn,
		cs:           cs,
		wp:           wp,
		pollInterval: 100 * time.Microsecond,
		sleep:        time.Sleep,
	}
}

// tx wraps SPI transaction with CS assertion.
func (f *Flash) tx(buf []byte) (err error) {
	if err = f.cs.Out(gpio.Low); err != nil {
		return err
	}
	defer func() {
		if csErr := f.cs.Out(gpio.High); csErr != nil && err == nil {
			err = csErr
		}
	}()
	err = f.conn.Tx(buf, buf)
	return
}

// Init identifies the chip and discovers its geometry: a known JEDEC ID
// configures it from the parameter table, otherwise the SFDP tables are
// consulted, and failing that the capacity byte of the ID. Init wakes
// the chip first in case a previous session left it in deep power down.
func (f *Flash) Init() error {
	if f.wp != nil {
		if err := f.wp.Out(gpio.High); err != nil {
			return fmt.Errorf("%w: write-protect line: %v", ErrCommunicationFailure, err)
		}
	}
	if err := f.releasePowerDown(); err != nil {
		return err
	}

	id, err := f.readID()
	if err != nil {
		return fmt.Errorf("%w: read ID: %v", ErrCommunicationFailure, err)
	}
	if id == [3]byte{0x00, 0x00, 0x00} || id == [3]byte{0xFF, 0xFF, 0xFF} {
		return fmt.Errorf("%w: no response to JEDEC ID (got % X)", ErrCommunicationFailure, id[:])
	}
	f.id = id

	if params, ok := knownFlash[id]; ok {
		f.pr = &params
		f.name = params.name
		f.geom = params.geom
	} else if geom, err := f.geometryFromSFDP(); err == nil {
		f.geom = geom
	} else if geom, err := geometryFromID(id); err == nil {
		f.geom = geom
	} else {
		return fmt.Errorf("%w: unknown chip % X: %v", ErrCommunicationFailure, id[:], err)
	}
	if err := f.geom.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrCommunicationFailure, err)
	}
	// The command layer speaks 3-byte addresses only; larger parts need
	// the 4-byte command set.
	if f.geom.Size() > max24+1 {
		return fmt.Errorf("%w: %d byte chip requires 4-byte addressing", ErrCommunicationFailure, f.geom.Size())
	}

	// A program or erase cycle interrupted by a power cut may still be
	// draining.
	if err := f.waitUntilIdle(f.tEraseChip()); err != nil {
		return err
	}
	f.ready = true
	return nil
}

// Deinit releases the device. Idempotent; the chip itself is left in
// its current power state.
func (f *Flash) Deinit() error {
	f.ready = false
	return nil
}

func (f *Flash) checkReady() error {
	if !f.ready {
		return fmt.Errorf("%w: device not initialized", ErrCommunicationFailure)
	}
	return nil
}

// ID returns the JEDEC ID read during Init.
func (f *Flash) ID() [3]byte { return f.id }

// Name returns the chip name for IDs in the parameter table, "" otherwise.
func (f *Flash) Name() string { return f.name }

func (f *Flash) ReadSize() int64    { return f.geom.ReadSize }
func (f *Flash) ProgramSize() int64 { return f.geom.ProgramSize }
func (f *Flash) EraseSize() int64   { return f.geom.EraseSize }
func (f *Flash) Size() int64        { return f.geom.Size() }

// Geometry returns the discovered device geometry.
func (f *Flash) Geometry() DeviceGeometry { return f.geom }

// Read fills p starting at addr, one page-bounded read command per
// page. Reads complete immediately on this chip class, but the chip is
// still confirmed idle first since a previous program or erase may be
// draining.
func (f *Flash) Read(p []byte, addr int64) error {
	if err := f.checkReady(); err != nil {
		return err
	}
	page, offset, err := f.geom.translate(addr, int64(len(p)), f.geom.ReadSize)
	if err != nil {
		return err
	}
	if err := f.wake(); err != nil {
		return err
	}
	if err := f.waitUntilIdle(f.tErase64KB()); err != nil {
		return err
	}

	for off := int64(0); off < int64(len(p)); {
		n := f.geom.PageSize - offset
		if rest := int64(len(p)) - off; rest < n {
			n = rest
		}
		if err := f.readData(page, offset, p[off:off+n]); err != nil {
			return fmt.Errorf("%w: read page %d: %v", ErrCommunicationFailure, page, err)
		}
		off += n
		page++
		offset = 0
	}
	return nil
}

// Program writes p starting at addr. The target region must have been
// erased; programming non-erased flash has an undefined result. The
// write-enable latch auto-clears after every program cycle, so it is
// re-asserted before each page.
func (f *Flash) Program(p []byte, addr int64) error {
	if err := f.checkReady(); err != nil {
		return err
	}
	page, offset, err := f.geom.translate(addr, int64(len(p)), f.geom.ProgramSize)
	if err != nil {
		return err
	}
	if err := f.wake(); err != nil {
		return err
	}
	if err := f.waitUntilIdle(f.tErase64KB()); err != nil {
		return err
	}

	for off := int64(0); off < int64(len(p)); {
		n := f.geom.PageSize - offset
		if rest := int64(len(p)) - off; rest < n {
			n = rest
		}
		if err := f.writeEnable(); err != nil {
			return fmt.Errorf("%w: write enable: %v", ErrCommunicationFailure, err)
		}
		if err := f.pageProgram(page, offset, p[off:off+n]); err != nil {
			return fmt.Errorf("%w: program page %d: %v", ErrCommunicationFailure, page, err)
		}
		if err := f.waitUntilIdle(f.tPP()); err != nil {
			return err
		}
		off += n
		page++
		offset = 0
	}
	return nil
}

// Erase resets [addr, addr+size) to 0xFF. 64KB sector erases are used
// where the range allows, 4KB subsector erases for the rest.
func (f *Flash) Erase(addr, size int64) error {
	if err := f.checkReady(); err != nil {
		return err
	}
	if _, _, err := f.geom.translate(addr, size, f.geom.EraseSize); err != nil {
		return err
	}
	if err := f.wake(); err != nil {
		return err
	}
	if err := f.waitUntilIdle(f.tErase64KB()); err != nil {
		return err
	}

	for a, remaining := addr, size; remaining > 0; {
		opcode, step, budget := cmdErase4KB, f.geom.EraseSize, f.tErase4KB()
		if a%sectorSize == 0 && remaining >= sectorSize {
			opcode, step, budget = cmdErase64KB, sectorSize, f.tErase64KB()
		}
		if err := f.writeEnable(); err != nil {
			return fmt.Errorf("%w: write enable: %v", ErrCommunicationFailure, err)
		}
		if err := f.eraseUnit(byte(opcode), a/f.geom.PageSize); err != nil {
			return fmt.Errorf("%w: erase at %#x: %v", ErrCommunicationFailure, a, err)
		}
		if err := f.waitUntilIdle(budget); err != nil {
			return err
		}
		a += step
		remaining -= step
	}
	return nil
}

// EraseChip bulk erases the entire chip.
func (f *Flash) EraseChip() error {
	if err := f.checkReady(); err != nil {
		return err
	}
	if err := f.wake(); err != nil {
		return err
	}
	if err := f.waitUntilIdle(f.tErase64KB()); err != nil {
		return err
	}
	if err := f.writeEnable(); err != nil {
		return fmt.Errorf("%w: write enable: %v", ErrCommunicationFailure, err)
	}
	if err := f.tx([]byte{cmdEraseChip}); err != nil {
		return fmt.Errorf("%w: chip erase: %v", ErrCommunicationFailure, err)
	}
	return f.waitUntilIdle(f.tEraseChip())
}

func (f *Flash) readID() (id [3]byte, err error) {
	buf := make([]byte, 4)
	buf[0] = cmdReadID
	if err = f.tx(buf); err != nil {
		return
	}
	return [3]byte(buf[1:]), nil
}

func (f *Flash) writeEnable() error {
	return f.tx([]byte{cmdWriteEnable})
}

const max24 = 1<<24 - 1 // 0xFFFFFF

// pageProgram writes within a single page. Callers split larger writes;
// the chip would wrap at the page boundary otherwise.
func (f *Flash) pageProgram(page, offset int64, data []byte) error {
	if int64(len(data)) > f.geom.PageSize-offset {
		return fmt.Errorf("%d bytes at page offset %d cross the page boundary", len(data), offset)
	}
	addr := f.geom.byteAddr(page, offset)
	if addr < 0 || addr > max24 {
		return fmt.Errorf("address 0x%X out of 24-bit range", addr)
	}
	buf := make([]byte, 4+len(data))
	buf[0] = cmdPageProgram
	buf[1] = byte(addr >> 16)
	buf[2] = byte(addr >> 8)
	buf[3] = byte(addr)
	copy(buf[4:], data)
	return f.tx(buf)
}

func (f *Flash) readData(page, offset int64, out []byte) error {
	const cmdBytes = 4 // opcode + 24-bit address
	addr := f.geom.byteAddr(page, offset)
	if addr < 0 || addr > max24 {
		return fmt.Errorf("address 0x%X out of 24-bit range", addr)
	}
	buf := make([]byte, cmdBytes+len(out))
	buf[0] = cmdRead
	buf[1] = byte(addr >> 16)
	buf[2] = byte(addr >> 8)
	buf[3] = byte(addr)
	// buf[4:] dummy bytes

	if err := f.tx(buf); err != nil {
		return err
	}
	copy(out, buf[cmdBytes:])
	return nil
}

// eraseUnit issues one erase command sized by opcode, addressed at the
// base of the unit holding page.
func (f *Flash) eraseUnit(opcode byte, page int64) error {
	addr := f.geom.byteAddr(page, 0)
	if addr < 0 || addr > max24 {
		return fmt.Errorf("address 0x%X out of 24-bit range", addr)
	}
	buf := []byte{opcode, byte(addr >> 16), byte(addr >> 8), byte(addr)}
	return f.tx(buf)
}
