package vbios

import (
	"errors"
	"fmt"
)

const (
	dcbPointerAddr = 0x36

	dcbSignature  uint32 = 0x4edcbdcb
	dcbMinVersion uint8  = 0x30
	dcbMaxVersion uint8  = 0x42

	dcbSizeOffset       = 0x1
	dcbEntryCountOffset = 0x2
	dcbEntrySizeOffset  = 0x3
	dcbSignatureOffset  = 0x6
)

var (
	ErrUnsupportedVersion   = errors.New("unknown DCB version")
	ErrIncompatibleHardware = errors.New("DCB version too old, GPU is incompatible")
	ErrCorruptImage         = errors.New("corrupt VBIOS image")
)

// LocateDCB follows the DCB pointer at 0x36 and validates the table header.
// DCB 3.x and 4.x share the same header layout and are treated alike.
func LocateDCB(image []byte) (Header, error) {
	var hdr Header
	ptr, err := Uint16LE(image, dcbPointerAddr)
	if err != nil {
		return hdr, fmt.Errorf("read DCB pointer: %w", err)
	}
	hdr.Offset = int(ptr)

	if hdr.Version, err = Uint8(image, hdr.Offset); err != nil {
		return hdr, fmt.Errorf("read DCB version: %w", err)
	}
	size, err := Uint8(image, hdr.Offset+dcbSizeOffset)
	if err != nil {
		return hdr, fmt.Errorf("read DCB header size: %w", err)
	}
	hdr.HeaderSize = int(size)

	if hdr.Version >= dcbMaxVersion {
		return hdr, fmt.Errorf("%w: 0x%02x", ErrUnsupportedVersion, hdr.Version)
	}
	if hdr.Version < dcbMinVersion {
		return hdr, fmt.Errorf("%w: 0x%02x", ErrIncompatibleHardware, hdr.Version)
	}

	sig, err := Uint32LE(image, hdr.Offset+dcbSignatureOffset)
	if err != nil {
		return hdr, fmt.Errorf("read DCB signature: %w", err)
	}
	if sig != dcbSignature {
		return hdr, fmt.Errorf("%w: DCB signature 0x%08x at 0x%x, want 0x%08x",
			ErrCorruptImage, sig, hdr.Offset+dcbSignatureOffset, dcbSignature)
	}

	count, err := Uint8(image, hdr.Offset+dcbEntryCountOffset)
	if err != nil {
		return hdr, fmt.Errorf("read DCB entry count: %w", err)
	}
	entrySize, err := Uint8(image, hdr.Offset+dcbEntrySizeOffset)
	if err != nil {
		return hdr, fmt.Errorf("read DCB entry size: %w", err)
	}
	hdr.EntryCount = int(count)
	hdr.EntrySize = int(entrySize)
	return hdr, nil
}
