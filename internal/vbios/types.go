package vbios

import "fmt"

// ConnectorType is the 4-bit class stored in the low nibble of a DCB entry.
type ConnectorType uint8

const (
	ConnCRT         ConnectorType = 0x0
	ConnTV          ConnectorType = 0x1
	ConnTMDS        ConnectorType = 0x2
	ConnLVDS        ConnectorType = 0x3
	ConnSDI         ConnectorType = 0x5
	ConnDisplayPort ConnectorType = 0x6

	ConnEOL  ConnectorType = 0xE // terminates the entry list
	ConnSkip ConnectorType = 0xF // unused slot
)

func (c ConnectorType) String() string {
	switch c {
	case ConnCRT:
		return "CRT"
	case ConnTV:
		return "TV"
	case ConnTMDS:
		return "TMDS"
	case ConnLVDS:
		return "LVDS"
	case ConnSDI:
		return "SDI"
	case ConnDisplayPort:
		return "DisplayPort"
	default:
		return "Unknown"
	}
}

// Header describes the DCB table header located inside the image.
type Header struct {
	Offset     int
	Version    uint8
	HeaderSize int
	EntryCount int
	EntrySize  int
}

func (h Header) Major() uint8 { return h.Version >> 4 }
func (h Header) Minor() uint8 { return h.Version & 0xf }

func (h Header) VersionString() string {
	return fmt.Sprintf("%d.%d", h.Major(), h.Minor())
}

// Entry is one populated DCB device entry.
type Entry struct {
	Index           int
	Raw             uint32
	Type            ConnectorType
	EDIDPort        uint8
	HeadMask        uint8
	Connector       uint8
	Bus             uint8
	Location        uint8
	BDR             bool
	BBDR            bool
	OutputResources uint8
	Virtual         bool
	Reserved        uint8
}

// Table is the result of a full decode pass. Skipped counts unused slots
// seen during the scan; Terminated is set when an end-of-list entry stopped
// it before EntryCount slots were read.
type Table struct {
	Header     Header
	Entries    []Entry
	Skipped    int
	Terminated bool
}
