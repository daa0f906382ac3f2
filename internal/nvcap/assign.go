package nvcap

import (
	"fmt"
	"sort"
	"strconv"

	"example.com/nvcapgate/internal/display"
)

// HeadTV addresses the TV mask in an Assignment.
const HeadTV = -1

// Assignment selects displays (0-based indices into the display list) for
// the TV mask and for each head.
type Assignment struct {
	TV    []int                   `json:"tv"`
	Heads [display.MaxHeads][]int `json:"heads"`
}

// HeadName returns the label users see for a head: "TV head" or "head N".
func HeadName(head int) string {
	if head == HeadTV {
		return "TV head"
	}
	return "head " + strconv.Itoa(head+1)
}

func (a *Assignment) slot(head int) (*[]int, error) {
	if head == HeadTV {
		return &a.TV, nil
	}
	if head < 0 || head >= display.MaxHeads {
		return nil, fmt.Errorf("unknown head %d", head)
	}
	return &a.Heads[head], nil
}

// Displays returns the displays selected for head.
func (a Assignment) Displays(head int) []int {
	s, err := a.slot(head)
	if err != nil {
		return nil
	}
	return *s
}

// Add places disp on head unless it is already there.
func (a *Assignment) Add(head, disp int) error {
	s, err := a.slot(head)
	if err != nil {
		return err
	}
	for _, d := range *s {
		if d == disp {
			return nil
		}
	}
	*s = append(*s, disp)
	return nil
}

// Toggle adds disp to head, or removes it when already present.
func (a *Assignment) Toggle(head, disp int) error {
	s, err := a.slot(head)
	if err != nil {
		return err
	}
	for i, d := range *s {
		if d == disp {
			*s = append((*s)[:i:i], (*s)[i+1:]...)
			return nil
		}
	}
	*s = append(*s, disp)
	return nil
}

// Clone returns a deep copy.
func (a Assignment) Clone() Assignment {
	out := Assignment{TV: append([]int(nil), a.TV...)}
	for h := range a.Heads {
		out.Heads[h] = append([]int(nil), a.Heads[h]...)
	}
	return out
}

// Sorted returns a copy with every selection in ascending display order.
func (a Assignment) Sorted() Assignment {
	out := a.Clone()
	sort.Ints(out.TV)
	for h := range out.Heads {
		sort.Ints(out.Heads[h])
	}
	return out
}

// SuggestAssignment pre-places displays the way they almost always belong:
// TV outputs on the TV mask, and on mobile GPUs the LVDS panel alone on the
// first head with every other display on the second.
func SuggestAssignment(displays []display.Display) Assignment {
	var a Assignment
	mobile := display.HasKind(displays, display.KindLVDS)
	for i, d := range displays {
		if d.Kind == display.KindTV {
			a.TV = append(a.TV, i)
			continue
		}
		if !mobile {
			continue
		}
		if d.Kind == display.KindLVDS && d.SupportsHead(0) {
			a.Heads[0] = append(a.Heads[0], i)
		} else if d.SupportsHead(1) {
			a.Heads[1] = append(a.Heads[1], i)
		}
	}
	return a
}
