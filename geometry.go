package dataflash

import "fmt"

// DeviceGeometry describes the addressable layout of the chip. It is
// discovered once during Init and immutable afterwards.
type DeviceGeometry struct {
	PageSize    int64 // bytes per page
	PageCount   int64
	ReadSize    int64 // read granularity
	ProgramSize int64 // program granularity
	EraseSize   int64 // erase granularity
}

// Size returns the total device size in bytes.
func (g DeviceGeometry) Size() int64 { return g.PageSize * g.PageCount }

// validate checks the granularity chain: ReadSize divides ProgramSize
// divides EraseSize, and the device size is a whole number of erase
// units.
func (g DeviceGeometry) validate() error {
	if g.PageSize <= 0 || g.PageCount <= 0 ||
		g.ReadSize <= 0 || g.ProgramSize <= 0 || g.EraseSize <= 0 {
		return fmt.Errorf("non-positive geometry field: %+v", g)
	}
	if g.ProgramSize%g.ReadSize != 0 {
		return fmt.Errorf("program size %d not a multiple of read size %d", g.ProgramSize, g.ReadSize)
	}
	if g.EraseSize%g.ProgramSize != 0 {
		return fmt.Errorf("erase size %d not a multiple of program size %d", g.EraseSize, g.ProgramSize)
	}
	if g.Size()%g.EraseSize != 0 {
		return fmt.Errorf("device size %d not a multiple of erase size %d", g.Size(), g.EraseSize)
	}
	if g.ProgramSize > g.PageSize {
		return fmt.Errorf("program size %d exceeds page size %d", g.ProgramSize, g.PageSize)
	}
	return nil
}

// translate maps a logical byte offset to (page index, offset within
// page) after checking bounds and the alignment of both addr and size
// against the operation's granularity. Pure computation, no hardware
// access.
func (g DeviceGeometry) translate(addr, size, granularity int64) (page, offset int64, err error) {
	if addr < 0 || size < 0 || size > g.Size() || addr > g.Size()-size {
		return 0, 0, fmt.Errorf("%w: range [%#x, %#x) exceeds device size %#x",
			ErrInvalidAddress, addr, addr+size, g.Size())
	}
	if addr%granularity != 0 {
		return 0, 0, fmt.Errorf("%w: address %#x not aligned to %d", ErrInvalidAddress, addr, granularity)
	}
	if size%granularity != 0 {
		return 0, 0, fmt.Errorf("%w: size %d not a multiple of %d", ErrInvalidAddress, size, granularity)
	}
	return addr / g.PageSize, addr % g.PageSize, nil
}

// byteAddr folds (page, offset) back into the 24-bit byte address sent
// on the wire.
func (g DeviceGeometry) byteAddr(page, offset int64) int {
	return int(page*g.PageSize + offset)
}
