package dataflash

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Serial Flash Discoverable Parameters [JESD216]. Chips absent from the
// parameter table can still describe their own geometry through the
// SFDP basic parameter table.
const (
	sfdpSignature    = 0x50444653 // "SFDP", little-endian
	sfdpBasicTableID = 0x00

	sfdpHeaderLen      = 8
	sfdpParamHeaderLen = 8
)

type sfdpReader func(offset uint32, out []byte) error

// readSFDP reads from the SFDP address space: opcode 0x5A, 24-bit
// address, one dummy byte before data.
func (f *Flash) readSFDP(offset uint32, out []byte) error {
	const cmdBytes = 5
	buf := make([]byte, cmdBytes+len(out))
	buf[0] = cmdReadSFDP
	buf[1] = byte(offset >> 16)
	buf[2] = byte(offset >> 8)
	buf[3] = byte(offset)
	// buf[4] dummy byte

	if err := f.tx(buf); err != nil {
		return err
	}
	copy(out, buf[cmdBytes:])
	return nil
}

func (f *Flash) geometryFromSFDP() (DeviceGeometry, error) {
	return parseSFDPGeometry(f.readSFDP)
}

// parseSFDPGeometry walks the SFDP header and parameter headers and
// builds a geometry from the JEDEC basic parameter table: density from
// the 2nd dword, erase granularity from the uniform-4KB-erase field of
// the 1st.
func parseSFDPGeometry(read sfdpReader) (DeviceGeometry, error) {
	hdr := make([]byte, sfdpHeaderLen)
	if err := read(0, hdr); err != nil {
		return DeviceGeometry{}, err
	}
	if binary.LittleEndian.Uint32(hdr[:4]) != sfdpSignature {
		return DeviceGeometry{}, errors.New("chip does not support SFDP")
	}
	nph := int(hdr[6]) + 1 // zero-based count

	for i := 0; i < nph; i++ {
		ph := make([]byte, sfdpParamHeaderLen)
		if err := read(uint32(sfdpHeaderLen+sfdpParamHeaderLen*i), ph); err != nil {
			return DeviceGeometry{}, err
		}
		id := ph[0]
		length := int(ph[3]) // in dwords
		ptr := binary.LittleEndian.Uint32(ph[4:]) & 0x00FFFFFF
		if id != sfdpBasicTableID || length < 2 {
			continue
		}

		table := make([]byte, length*4)
		if err := read(ptr, table); err != nil {
			return DeviceGeometry{}, err
		}
		dword1 := binary.LittleEndian.Uint32(table[0:4])
		density := binary.LittleEndian.Uint32(table[4:8])
		// Bit 31 set switches the field to the exponent encoding used
		// by parts of 4Gbit and above.
		if density&(1<<31) != 0 {
			return DeviceGeometry{}, errors.New("density uses exponent encoding, chip too large")
		}
		size := (int64(density) + 1) / 8 // density is in bits, minus one

		geom := uniformGeometry(size)
		if dword1&0x3 != 0x1 { // no uniform 4KB erase
			geom.EraseSize = sectorSize
		}
		if err := geom.validate(); err != nil {
			return DeviceGeometry{}, fmt.Errorf("SFDP geometry: %w", err)
		}
		return geom, nil
	}
	return DeviceGeometry{}, errors.New("no basic parameter table")
}
