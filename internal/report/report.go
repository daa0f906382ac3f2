package report

import (
	"encoding/json"
	"os"
	"time"

	"example.com/nvcapgate/internal/common"
	"example.com/nvcapgate/internal/display"
	"example.com/nvcapgate/internal/nvcap"
	"example.com/nvcapgate/internal/vbios"
)

// Report is everything a calculation produced, in a form that survives a
// JSON round trip.
type Report struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	ROM         string            `json:"rom"`
	ROMSha256   string            `json:"romSha256"`
	DCB         DCBSummary        `json:"dcb"`
	Entries     []EntryRow        `json:"entries"`
	Displays    []display.Display `json:"displays"`
	Assignment  nvcap.Assignment  `json:"assignment"`
	Word        nvcap.Word        `json:"word"`
	NVCAP       string            `json:"nvcap"`
}

type DCBSummary struct {
	Offset     int    `json:"offset"`
	Version    string `json:"version"`
	HeaderSize int    `json:"headerSize"`
	EntryCount int    `json:"entryCount"`
	EntrySize  int    `json:"entrySize"`
	Skipped    int    `json:"skipped"`
	Terminated bool   `json:"terminated"`
}

// EntryRow is a decoded DCB entry with its connector type spelled out.
type EntryRow struct {
	Index           int    `json:"index"`
	Raw             uint32 `json:"raw"`
	Type            string `json:"type"`
	TypeCode        uint8  `json:"typeCode"`
	EDIDPort        uint8  `json:"edidPort"`
	HeadMask        uint8  `json:"headMask"`
	Connector       uint8  `json:"connector"`
	Bus             uint8  `json:"bus"`
	Location        uint8  `json:"location"`
	BDR             bool   `json:"bdr"`
	BBDR            bool   `json:"bbdr"`
	OutputResources uint8  `json:"outputResources"`
	Virtual         bool   `json:"virtual"`
	Reserved        uint8  `json:"reserved"`
}

// New assembles a report. w must already carry the masks built from a.
func New(rom string, image []byte, res nvcap.Result, a nvcap.Assignment, w nvcap.Word) Report {
	hdr := res.Table.Header
	rep := Report{
		GeneratedAt: time.Now().UTC(),
		ROM:         rom,
		ROMSha256:   common.Sha256Hex(image),
		DCB: DCBSummary{
			Offset:     hdr.Offset,
			Version:    hdr.VersionString(),
			HeaderSize: hdr.HeaderSize,
			EntryCount: hdr.EntryCount,
			EntrySize:  hdr.EntrySize,
			Skipped:    res.Table.Skipped,
			Terminated: res.Table.Terminated,
		},
		Displays:   res.Displays,
		Assignment: a.Sorted(),
		Word:       w,
		NVCAP:      nvcap.FormatHex(w.Bytes()),
	}
	for _, e := range res.Table.Entries {
		rep.Entries = append(rep.Entries, newEntryRow(e))
	}
	return rep
}

func newEntryRow(e vbios.Entry) EntryRow {
	return EntryRow{
		Index:           e.Index,
		Raw:             e.Raw,
		Type:            e.Type.String(),
		TypeCode:        uint8(e.Type),
		EDIDPort:        e.EDIDPort,
		HeadMask:        e.HeadMask,
		Connector:       e.Connector,
		Bus:             e.Bus,
		Location:        e.Location,
		BDR:             e.BDR,
		BBDR:            e.BBDR,
		OutputResources: e.OutputResources,
		Virtual:         e.Virtual,
		Reserved:        e.Reserved,
	}
}

func SaveJSON(rep Report, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadJSON(path string) (Report, error) {
	var rep Report
	b, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	err = json.Unmarshal(b, &rep)
	return rep, err
}
