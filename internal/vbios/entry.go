package vbios

import "fmt"

const (
	entryMaskType      = uint32(0xf)
	entryShiftEDID     = 4
	entryShiftHeads    = 8
	entryShiftConn     = 12
	entryShiftBus      = 16
	entryShiftLoc      = 20
	entryBitBDR        = uint32(1) << 22
	entryBitBBDR       = uint32(1) << 23
	entryShiftOutRes   = 24
	entryBitVirtual    = uint32(1) << 28
	entryShiftReserved = 28
)

// DecodeEntryWord splits a raw DCB device entry word into its bitfields.
func DecodeEntryWord(index int, word uint32) Entry {
	return Entry{
		Index:           index,
		Raw:             word,
		Type:            ConnectorType(word & entryMaskType),
		EDIDPort:        uint8((word >> entryShiftEDID) & 0xf),
		HeadMask:        uint8((word >> entryShiftHeads) & 0xf),
		Connector:       uint8((word >> entryShiftConn) & 0xf),
		Bus:             uint8((word >> entryShiftBus) & 0xf),
		Location:        uint8((word >> entryShiftLoc) & 0x3),
		BDR:             word&entryBitBDR != 0,
		BBDR:            word&entryBitBBDR != 0,
		OutputResources: uint8((word >> entryShiftOutRes) & 0xf),
		Virtual:         word&entryBitVirtual != 0,
		Reserved:        uint8((word >> entryShiftReserved) & 0x7),
	}
}

// DecodeEntries walks the entry slots that follow the header. Skip slots are
// dropped, and an end-of-list entry stops the walk.
func DecodeEntries(image []byte, hdr Header) ([]Entry, error) {
	tbl, err := decodeEntries(image, hdr)
	return tbl.Entries, err
}

func decodeEntries(image []byte, hdr Header) (Table, error) {
	tbl := Table{Header: hdr}
	for n := 0; n < hdr.EntryCount; n++ {
		off := hdr.Offset + hdr.HeaderSize + hdr.EntrySize*n
		word, err := Uint32LE(image, off)
		if err != nil {
			return tbl, fmt.Errorf("DCB entry %d: %w", n, err)
		}
		entry := DecodeEntryWord(n, word)
		if entry.Type == ConnSkip {
			tbl.Skipped++
			continue
		}
		if entry.Type == ConnEOL {
			tbl.Terminated = true
			break
		}
		tbl.Entries = append(tbl.Entries, entry)
	}
	return tbl, nil
}

// Decode locates the DCB in image and decodes its populated entries.
func Decode(image []byte) (Table, error) {
	hdr, err := LocateDCB(image)
	if err != nil {
		return Table{Header: hdr}, err
	}
	return decodeEntries(image, hdr)
}
