package display

import (
	"fmt"
	"strconv"
	"strings"

	"example.com/nvcapgate/internal/vbios"
)

// Kind is the user-facing classification of a display.
type Kind int

const (
	KindLVDS Kind = iota
	KindTV
	KindAnalog
	KindDigital
	KindDVI
)

func (k Kind) String() string {
	switch k {
	case KindLVDS:
		return "LVDS"
	case KindTV:
		return "TV"
	case KindAnalog:
		return "Analog"
	case KindDigital:
		return "Digital"
	case KindDVI:
		return "DVI"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// MarshalText lets reports carry the kind name instead of its ordinal.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for c := KindLVDS; c <= KindDVI; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown display kind %q", text)
}

// MaxHeads is the number of heads a DCB head bitmask can address.
const MaxHeads = 4

// Display is a logical output backed by one or two DCB entries, identified
// by their table indices.
type Display struct {
	Kind     Kind  `json:"kind"`
	Entries  []int `json:"dcbEntries"`
	HeadMask uint8 `json:"headMask"`
}

// KindOf maps a connector type to its display kind.
func KindOf(e vbios.Entry) Kind {
	switch e.Type {
	case vbios.ConnLVDS:
		return KindLVDS
	case vbios.ConnCRT:
		return KindAnalog
	case vbios.ConnTV:
		return KindTV
	default:
		return KindDigital
	}
}

// SupportsHead reports whether head (0-based) may drive the display.
func (d Display) SupportsHead(head int) bool {
	if head < 0 || head >= MaxHeads {
		return false
	}
	return d.HeadMask&(1<<head) != 0
}

// HeadNumbers lists the supported heads 1-based, with TV appended for TV
// displays, e.g. "1, 2, TV".
func (d Display) HeadNumbers() string {
	var parts []string
	for h := 0; h < MaxHeads; h++ {
		if d.SupportsHead(h) {
			parts = append(parts, strconv.Itoa(h+1))
		}
	}
	if d.Kind == KindTV {
		parts = append(parts, "TV")
	}
	return strings.Join(parts, ", ")
}

// HasKind reports whether any display is of kind k.
func HasKind(displays []Display, k Kind) bool {
	for _, d := range displays {
		if d.Kind == k {
			return true
		}
	}
	return false
}
