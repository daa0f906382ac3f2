package nvcap

import (
	"fmt"

	"example.com/nvcapgate/internal/display"
)

// maxMaskEntry is the highest DCB index a 16-bit head mask can carry.
const maxMaskEntry = 15

// Build returns w with its TV and head masks computed from a. Every selected
// display must exist and be drivable by the head it is placed on; only TV
// displays may be placed on the TV mask.
func Build(w Word, displays []display.Display, a Assignment) (Word, error) {
	mask, err := headMask(displays, a.TV, HeadTV)
	if err != nil {
		return w, err
	}
	w.TVMask = mask
	for h := 0; h < display.MaxHeads; h++ {
		mask, err := headMask(displays, a.Heads[h], h)
		if err != nil {
			return w, err
		}
		w.HeadMasks[h] = mask
	}
	return w, nil
}

// Pack builds the word and returns its 20 byte encoding.
func Pack(w Word, displays []display.Display, a Assignment) ([]byte, error) {
	built, err := Build(w, displays, a)
	if err != nil {
		return nil, err
	}
	return built.Bytes(), nil
}

func headMask(displays []display.Display, selected []int, head int) (uint16, error) {
	var mask uint16
	for _, idx := range selected {
		if idx < 0 || idx >= len(displays) {
			return 0, &InconsistentError{Display: idx, Head: head,
				Reason: fmt.Sprintf("no such display (have %d)", len(displays))}
		}
		d := displays[idx]
		if head == HeadTV {
			if d.Kind != display.KindTV {
				return 0, &InconsistentError{Display: idx, Head: head,
					Reason: fmt.Sprintf("%s display cannot use the TV mask", d.Kind)}
			}
		} else if !d.SupportsHead(head) {
			supported := d.HeadNumbers()
			if supported == "" {
				supported = "none"
			}
			return 0, &InconsistentError{Display: idx, Head: head,
				Reason: "head not supported (supported: " + supported + ")"}
		}
		for _, entry := range d.Entries {
			if entry < 0 || entry > maxMaskEntry {
				return 0, &InconsistentError{Display: idx, Head: head,
					Reason: fmt.Sprintf("DCB entry %d does not fit a 16-bit mask", entry)}
			}
			mask |= 1 << uint(entry)
		}
	}
	return mask, nil
}
