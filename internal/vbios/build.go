package vbios

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	defaultTableOffset = 0x100
	defaultVersion     = 0x40
	defaultHeaderSize  = 0x17
	defaultEntrySize   = 8
)

// ImageSpec describes a synthetic VBIOS image holding a DCB table. Zero
// values select DCB 4.0 defaults. EntryCount overrides the declared count
// (zero means len(Entries)) and Pad bytes are appended after the last slot.
type ImageSpec struct {
	Offset     int
	Version    uint8
	HeaderSize int
	EntrySize  int
	EntryCount int
	Entries    []uint32
	Pad        int
}

// EncodeEntryWord is the inverse of DecodeEntryWord. Index and Raw are ignored.
func EncodeEntryWord(e Entry) uint32 {
	word := uint32(e.Type) & entryMaskType
	word |= uint32(e.EDIDPort&0xf) << entryShiftEDID
	word |= uint32(e.HeadMask&0xf) << entryShiftHeads
	word |= uint32(e.Connector&0xf) << entryShiftConn
	word |= uint32(e.Bus&0xf) << entryShiftBus
	word |= uint32(e.Location&0x3) << entryShiftLoc
	if e.BDR {
		word |= entryBitBDR
	}
	if e.BBDR {
		word |= entryBitBBDR
	}
	word |= uint32(e.OutputResources&0xf) << entryShiftOutRes
	word |= uint32(e.Reserved&0x7) << entryShiftReserved
	if e.Virtual {
		word |= entryBitVirtual
	}
	return word
}

// BuildImage lays out an image whose DCB pointer, header and entries follow
// the on-ROM format read by LocateDCB and DecodeEntries.
func BuildImage(spec ImageSpec) ([]byte, error) {
	if spec.Offset == 0 {
		spec.Offset = defaultTableOffset
	}
	if spec.Version == 0 {
		spec.Version = defaultVersion
	}
	if spec.HeaderSize == 0 {
		spec.HeaderSize = defaultHeaderSize
	}
	if spec.EntrySize == 0 {
		spec.EntrySize = defaultEntrySize
	}
	if spec.EntryCount == 0 {
		spec.EntryCount = len(spec.Entries)
	}
	if spec.Offset < dcbPointerAddr+2 || spec.Offset > 0xffff {
		return nil, fmt.Errorf("table offset 0x%x out of range", spec.Offset)
	}
	if spec.HeaderSize < dcbSignatureOffset+4 || spec.HeaderSize > 0xff {
		return nil, fmt.Errorf("header size 0x%x out of range", spec.HeaderSize)
	}
	if spec.EntrySize < 4 || spec.EntrySize > 0xff {
		return nil, fmt.Errorf("entry size 0x%x out of range", spec.EntrySize)
	}
	if spec.EntryCount > 0xff || len(spec.Entries) > 0xff {
		return nil, errors.New("too many DCB entries")
	}

	end := spec.Offset + spec.HeaderSize + spec.EntrySize*len(spec.Entries) + spec.Pad
	image := make([]byte, end)
	binary.LittleEndian.PutUint16(image[dcbPointerAddr:], uint16(spec.Offset))
	image[spec.Offset] = spec.Version
	image[spec.Offset+dcbSizeOffset] = uint8(spec.HeaderSize)
	image[spec.Offset+dcbEntryCountOffset] = uint8(spec.EntryCount)
	image[spec.Offset+dcbEntrySizeOffset] = uint8(spec.EntrySize)
	binary.LittleEndian.PutUint32(image[spec.Offset+dcbSignatureOffset:], dcbSignature)
	for i, word := range spec.Entries {
		off := spec.Offset + spec.HeaderSize + spec.EntrySize*i
		binary.LittleEndian.PutUint32(image[off:], word)
	}
	return image, nil
}
