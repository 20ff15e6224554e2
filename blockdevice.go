package dataflash

// BlockDevice is the public contract of the driver: a storage medium
// with fixed read/program/erase granularities. Program requires the
// target region to have been erased first; programming a non-erased
// region has an undefined result (a flash property, not a driver
// fault).
//
// Implementations are not safe for concurrent use: command framing
// depends on an uninterrupted select/transfer/deselect sequence, so
// callers sharing one device across goroutines must serialize access
// themselves.
type BlockDevice interface {
	// Init establishes bus ownership, identifies the chip and
	// discovers its geometry. It must succeed before any other call.
	Init() error

	// Deinit releases the device. Idempotent.
	Deinit() error

	// Read fills p from the device starting at addr. Both addr and
	// len(p) must be multiples of ReadSize.
	Read(p []byte, addr int64) error

	// Program writes p to the device starting at addr. Both addr and
	// len(p) must be multiples of ProgramSize. The region must have
	// been erased.
	Program(p []byte, addr int64) error

	// Erase resets the range [addr, addr+size) to the erased state
	// (all bytes 0xFF). Both addr and size must be multiples of
	// EraseSize.
	Erase(addr, size int64) error

	// Geometry accessors, valid only after a successful Init.
	ReadSize() int64
	ProgramSize() int64
	EraseSize() int64
	Size() int64
}
