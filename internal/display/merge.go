package display

import "example.com/nvcapgate/internal/vbios"

// Merge groups DCB entries sharing an I2C/AUX bus into single displays. The
// bus, not the connector index, identifies the two link halves of one port.
// Entries are visited in table order and each one is consumed at most once.
func Merge(entries []vbios.Entry) []Display {
	merged := make(map[int]bool, len(entries))
	displays := make([]Display, 0, len(entries))
	for i, entry := range entries {
		if merged[entry.Index] {
			continue
		}
		merged[entry.Index] = true

		partner := -1
		for j := i + 1; j < len(entries); j++ {
			cand := entries[j]
			if cand.Bus == entry.Bus && cand.Index != entry.Index && !merged[cand.Index] {
				partner = j
				break
			}
		}
		if partner < 0 {
			displays = append(displays, Display{
				Kind:     KindOf(entry),
				Entries:  []int{entry.Index},
				HeadMask: entry.HeadMask,
			})
			continue
		}

		other := entries[partner]
		merged[other.Index] = true
		kind := KindDVI
		if entry.Type == other.Type {
			kind = KindOf(other)
		}
		displays = append(displays, Display{
			Kind:     kind,
			Entries:  []int{entry.Index, other.Index},
			HeadMask: entry.HeadMask & other.HeadMask,
		})
	}
	return displays
}
