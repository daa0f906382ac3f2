package display

import (
	"reflect"
	"testing"

	"example.com/nvcapgate/internal/vbios"
)

func entry(index int, typ vbios.ConnectorType, heads, bus uint8) vbios.Entry {
	return vbios.Entry{Index: index, Type: typ, HeadMask: heads, Bus: bus}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		entries []vbios.Entry
		want    []Display
	}{
		{
			name:    "single crt",
			entries: []vbios.Entry{entry(0, vbios.ConnCRT, 0b0011, 2)},
			want:    []Display{{Kind: KindAnalog, Entries: []int{0}, HeadMask: 0b0011}},
		},
		{
			name: "same type pair",
			entries: []vbios.Entry{
				entry(0, vbios.ConnTMDS, 0b0001, 5),
				entry(1, vbios.ConnTMDS, 0b0011, 5),
			},
			want: []Display{{Kind: KindDigital, Entries: []int{0, 1}, HeadMask: 0b0001}},
		},
		{
			name: "differing type pair",
			entries: []vbios.Entry{
				entry(0, vbios.ConnTMDS, 0b0011, 5),
				entry(1, vbios.ConnDisplayPort, 0b0110, 5),
			},
			want: []Display{{Kind: KindDVI, Entries: []int{0, 1}, HeadMask: 0b0010}},
		},
		{
			name: "crt and tmds on one bus",
			entries: []vbios.Entry{
				entry(0, vbios.ConnCRT, 0b0011, 0),
				entry(1, vbios.ConnLVDS, 0b0001, 3),
				entry(2, vbios.ConnTMDS, 0b0011, 0),
				entry(3, vbios.ConnTV, 0b0011, 1),
			},
			want: []Display{
				{Kind: KindDVI, Entries: []int{0, 2}, HeadMask: 0b0011},
				{Kind: KindLVDS, Entries: []int{1}, HeadMask: 0b0001},
				{Kind: KindTV, Entries: []int{3}, HeadMask: 0b0011},
			},
		},
		{
			name: "third entry on a shared bus stays alone",
			entries: []vbios.Entry{
				entry(0, vbios.ConnTMDS, 0b0011, 4),
				entry(2, vbios.ConnTMDS, 0b0001, 4),
				entry(5, vbios.ConnDisplayPort, 0b0010, 4),
			},
			want: []Display{
				{Kind: KindDigital, Entries: []int{0, 2}, HeadMask: 0b0001},
				{Kind: KindDigital, Entries: []int{5}, HeadMask: 0b0010},
			},
		},
		{
			name:    "empty",
			entries: nil,
			want:    []Display{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Merge(tc.entries)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Merge = %+v, want %+v", got, tc.want)
			}
			assertPartition(t, tc.entries, got)
		})
	}
}

// assertPartition checks that every entry backs exactly one display and that
// each display mask is the AND of its entries.
func assertPartition(t *testing.T, entries []vbios.Entry, displays []Display) {
	t.Helper()
	byIndex := make(map[int]vbios.Entry, len(entries))
	for _, e := range entries {
		byIndex[e.Index] = e
	}
	seen := make(map[int]int)
	for _, d := range displays {
		if len(d.Entries) < 1 || len(d.Entries) > 2 {
			t.Fatalf("display %+v backed by %d entries", d, len(d.Entries))
		}
		mask := uint8(0xf)
		for _, idx := range d.Entries {
			seen[idx]++
			mask &= byIndex[idx].HeadMask
		}
		if d.HeadMask != mask {
			t.Fatalf("display %+v HeadMask = 0x%x, want 0x%x", d, d.HeadMask, mask)
		}
		for _, idx := range d.Entries {
			if d.HeadMask&^byIndex[idx].HeadMask != 0 {
				t.Fatalf("display mask 0x%x not a subset of entry %d mask 0x%x", d.HeadMask, idx, byIndex[idx].HeadMask)
			}
		}
	}
	for _, e := range entries {
		if seen[e.Index] != 1 {
			t.Fatalf("entry %d appears in %d displays, want 1", e.Index, seen[e.Index])
		}
	}
}

func TestMergeFromDecodedImage(t *testing.T) {
	image, err := vbios.BuildImage(vbios.ImageSpec{
		Entries: []uint32{vbios.EncodeEntryWord(vbios.Entry{Type: vbios.ConnCRT, HeadMask: 0b0011, Bus: 2})},
	})
	if err != nil {
		t.Fatalf("BuildImage: %v", err)
	}
	tbl, err := vbios.Decode(image)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	displays := Merge(tbl.Entries)
	if len(displays) != 1 {
		t.Fatalf("displays = %d, want 1", len(displays))
	}
	d := displays[0]
	if d.Kind != KindAnalog || d.HeadMask != 0b0011 || len(d.Entries) != 1 {
		t.Fatalf("display = %+v, want unmerged Analog with mask 0b0011", d)
	}
}

func TestDisplayHeads(t *testing.T) {
	d := Display{Kind: KindTV, HeadMask: 0b0101}
	if !d.SupportsHead(0) || d.SupportsHead(1) || !d.SupportsHead(2) {
		t.Fatalf("SupportsHead mismatch for mask 0b0101")
	}
	if d.SupportsHead(4) || d.SupportsHead(-1) {
		t.Fatalf("SupportsHead accepted an out of range head")
	}
	if got := d.HeadNumbers(); got != "1, 3, TV" {
		t.Fatalf("HeadNumbers = %q, want %q", got, "1, 3, TV")
	}
	if got := KindDVI.String(); got != "DVI" {
		t.Fatalf("KindDVI.String() = %q", got)
	}
	displays := []Display{{Kind: KindDigital}, {Kind: KindLVDS}}
	if !HasKind(displays, KindLVDS) || HasKind(displays, KindTV) {
		t.Fatalf("HasKind mismatch")
	}
}

func TestKindText(t *testing.T) {
	for k := KindLVDS; k <= KindDVI; k++ {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", k, err)
		}
		var back Kind
		if err := back.UnmarshalText(text); err != nil || back != k {
			t.Fatalf("UnmarshalText(%q) = %v, %v", text, back, err)
		}
	}
	var k Kind
	if err := k.UnmarshalText([]byte("HDMI")); err == nil {
		t.Fatalf("UnmarshalText accepted HDMI")
	}
}
