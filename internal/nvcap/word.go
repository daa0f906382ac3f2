package nvcap

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"example.com/nvcapgate/internal/display"
	"example.com/nvcapgate/internal/vbios"
)

const (
	// VersionModern targets 8000 series cards and newer.
	VersionModern uint8 = 5
	// VersionLegacy targets 6000/7000 series cards.
	VersionLegacy uint8 = 4

	FieldFLegacy  uint8 = 0x07 // Clover default, older GPUs
	FieldFDesktop uint8 = 0x0A
	FieldFLaptop  uint8 = 0x0B
	FieldFLowEnd  uint8 = 0x0E // 300 series+ MacBook Air class
	FieldFModern  uint8 = 0x0F // 300 series+ MacBook Pro/iMac class

	// Size is the packed length of the capability word in bytes.
	Size = 20
)

// Word is the editable NVCAP configuration. The DCB masks are filled in by
// Build from a head assignment. Unknown1 sits next to the flags and looks
// backlight related; it is normally zero.
type Word struct {
	Version                      uint8                    `json:"version"`
	Mobile                       bool                     `json:"mobile"`
	Composite                    bool                     `json:"composite"`
	Unknown1                     uint8                    `json:"unknown1"`
	TVMask                       uint16                   `json:"tvMask"`
	HeadMasks                    [display.MaxHeads]uint16 `json:"headMasks"`
	ScriptBasedPowerAndBacklight bool                     `json:"scriptBasedPowerAndBacklight"`
	FieldF                       uint8                    `json:"fieldF"`
	EDIDBitness                  uint8                    `json:"edidBitness"`
	Reserved                     [3]byte                  `json:"reserved"`
}

// Default returns the starting configuration for a set of displays.
func Default(displays []display.Display) Word {
	return Word{
		Version:   VersionModern,
		Mobile:    display.HasKind(displays, display.KindLVDS),
		Composite: display.HasKind(displays, display.KindTV),
		FieldF:    FieldFModern,
	}
}

// Bytes lays the word out in the 20 byte order the driver reads.
func (w Word) Bytes() []byte {
	b := make([]byte, Size)
	b[0] = w.Version
	b[1] = boolByte(w.Mobile)
	b[2] = boolByte(w.Composite)
	b[3] = w.Unknown1
	binary.LittleEndian.PutUint16(b[4:6], w.TVMask)
	for h, mask := range w.HeadMasks {
		binary.LittleEndian.PutUint16(b[6+2*h:8+2*h], mask)
	}
	b[14] = boolByte(w.ScriptBasedPowerAndBacklight)
	b[15] = w.FieldF
	b[16] = w.EDIDBitness
	copy(b[17:20], w.Reserved[:])
	return b
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// FormatHex renders packed bytes as space separated 32-bit groups, e.g.
// "05000000 00000100 ...".
func FormatHex(b []byte) string {
	groups := make([]string, 0, (len(b)+3)/4)
	for i := 0; i < len(b); i += 4 {
		end := i + 4
		if end > len(b) {
			end = len(b)
		}
		groups = append(groups, hex.EncodeToString(b[i:end]))
	}
	return strings.Join(groups, " ")
}

// Result bundles the decoded table and the displays merged from it.
type Result struct {
	Table    vbios.Table
	Displays []display.Display
}

// Decode runs the locate, decode and merge steps over a loaded image.
func Decode(image []byte) (Result, error) {
	tbl, err := vbios.Decode(image)
	if err != nil {
		return Result{Table: tbl}, err
	}
	return Result{Table: tbl, Displays: display.Merge(tbl.Entries)}, nil
}
