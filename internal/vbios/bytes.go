package vbios

import (
	"encoding/binary"
	"fmt"
)

// Uint8 returns the byte at off.
func Uint8(image []byte, off int) (uint8, error) {
	if err := checkRange(image, off, 1); err != nil {
		return 0, err
	}
	return image[off], nil
}

// Uint16LE returns the little-endian 16-bit value at off.
func Uint16LE(image []byte, off int) (uint16, error) {
	if err := checkRange(image, off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(image[off : off+2]), nil
}

// Uint32LE returns the little-endian 32-bit value at off.
func Uint32LE(image []byte, off int) (uint32, error) {
	if err := checkRange(image, off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(image[off : off+4]), nil
}

func checkRange(image []byte, off, n int) error {
	if off < 0 || off+n > len(image) {
		return fmt.Errorf("%w: read of %d bytes at 0x%x outside %d byte image", ErrCorruptImage, n, off, len(image))
	}
	return nil
}
