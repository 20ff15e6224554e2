package dataflash

import (
	"fmt"
	"time"
)

// flashParams carries the geometry and AC timing limits of one chip
// family, keyed by JEDEC ID. Timings are the datasheet maxima and bound
// the busy-wait after the corresponding command.
type flashParams struct {
	name string
	geom DeviceGeometry

	tRES1      time.Duration // release from deep power down to next command
	tDP        time.Duration // CS high to power-down mode
	tPP        time.Duration // page program cycle
	tErase4KB  time.Duration
	tErase64KB time.Duration
	tEraseChip time.Duration
}

var (
	flashIDMicronN25Q32    = [3]byte{0x20, 0xBA, 0x16}
	flashIDWinbondW25Q128  = [3]byte{0xEF, 0x70, 0x18}
	flashIDMacronixMX25R64 = [3]byte{0xC2, 0x28, 0x17}
)

// All three families use 256B pages, 256B program granularity and 4KB
// uniform erase; the driver treats the page as the read unit as well.
func uniformGeometry(size int64) DeviceGeometry {
	const pageSize = 256
	return DeviceGeometry{
		PageSize:    pageSize,
		PageCount:   size / pageSize,
		ReadSize:    pageSize,
		ProgramSize: pageSize,
		EraseSize:   4 << 10,
	}
}

var knownFlash = map[[3]byte]flashParams{
	flashIDMicronN25Q32: {
		name: "Micron N25Q 32Mb",
		geom: uniformGeometry(4 << 20),

		// [N25Q32|Table 38: AC Characteristics and Operating Conditions]
		// tPP: PAGE PROGRAM cycle time (256 bytes)
		tPP: 5 * time.Millisecond,
		// tSSE: Subsector ERASE cycle time
		tErase4KB: 800 * time.Millisecond,
		// tSE: Sector ERASE cycle time
		tErase64KB: 3 * time.Second,
		// tBE: Bulk ERASE cycle time
		tEraseChip: 60 * time.Second,
	},

	flashIDWinbondW25Q128: {
		name: "Winbond W25Q 128Mb",
		geom: uniformGeometry(16 << 20),

		// [W25Q128|9.6 AC Electrical Characteristics]:
		// tRES1: /CS High to Standby Mode without ID Read
		tRES1: 3 * time.Microsecond,
		// tDP: /CS High to Power-down Mode
		tDP: 3 * time.Microsecond,
		// tPP: Page Program Time
		tPP: 3 * time.Millisecond,
		// tSE: Sector Erase Time (4KB)
		tErase4KB: 400 * time.Millisecond,
		// tBE2: Block Erase Time (64KB)
		tErase64KB: 2000 * time.Millisecond,
		// tCE: Chip Erase Time
		tEraseChip: 200 * time.Second,
	},

	flashIDMacronixMX25R64: {
		name: "Macronix MX25R 64Mb",
		geom: uniformGeometry(8 << 20),

		// [MX25R64|11. AC CHARACTERISTICS] (low power mode)
		// tRES1: deep power down release is specified at 35us
		tRES1: 35 * time.Microsecond,
		// tDP: CS# High to Deep Power-down Mode
		tDP: 10 * time.Microsecond,
		tPP: 10 * time.Millisecond,
		// tSE: Sector Erase (4KB)
		tErase4KB: 240 * time.Millisecond,
		// tBE: Block Erase (64KB)
		tErase64KB: 3500 * time.Millisecond,
		tEraseChip: 240 * time.Second,
	},
}

// geometryFromID derives the device size from the JEDEC capacity byte:
// most vendors encode it as a power of two in the third ID byte. Page
// and erase sizes fall back to the de-facto uniform layout.
func geometryFromID(id [3]byte) (DeviceGeometry, error) {
	shift := int(id[2])
	if shift < 0x11 || shift > 0x1E { // 128KB .. 1GB
		return DeviceGeometry{}, fmt.Errorf("cannot derive capacity from ID % X", id[:])
	}
	return uniformGeometry(int64(1) << shift), nil
}

func (f *Flash) paramOrMax(get func(*flashParams) time.Duration) time.Duration {
	// get parameter if configured
	if f.pr != nil {
		return get(f.pr)
	}

	// fall back to maximum duration from all known flash parameters
	var tmax time.Duration
	for _, param := range knownFlash {
		tmax = max(tmax, get(&param))
	}
	return tmax
}

func (f *Flash) tRES1() time.Duration {
	return f.paramOrMax(func(p *flashParams) time.Duration { return p.tRES1 })
}
func (f *Flash) tDP() time.Duration {
	return f.paramOrMax(func(p *flashParams) time.Duration { return p.tDP })
}
func (f *Flash) tPP() time.Duration {
	return f.paramOrMax(func(p *flashParams) time.Duration { return p.tPP })
}
func (f *Flash) tErase4KB() time.Duration {
	return f.paramOrMax(func(p *flashParams) time.Duration { return p.tErase4KB })
}
func (f *Flash) tErase64KB() time.Duration {
	return f.paramOrMax(func(p *flashParams) time.Duration { return p.tErase64KB })
}
func (f *Flash) tEraseChip() time.Duration {
	return f.paramOrMax(func(p *flashParams) time.Duration { return p.tEraseChip })
}
