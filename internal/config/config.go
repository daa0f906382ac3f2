package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"example.com/nvcapgate/internal/common"
	"example.com/nvcapgate/internal/nvcap"
)

// File is the selection file accepted by `nvcapctl calc --config`.
type File struct {
	NVCAP   NVCAPSection     `yaml:"nvcap"`
	Heads   HeadsSection     `yaml:"heads"`
	Suggest bool             `yaml:"suggest"`
	Report  ReportSection    `yaml:"report"`
	Journal string           `yaml:"journal"`
	Logs    common.LogConfig `yaml:"logs"`
}

// NVCAPSection overrides capability word fields. Unset fields keep the
// values derived from the ROM.
type NVCAPSection struct {
	Version                      *uint8 `yaml:"version"`
	Mobile                       *bool  `yaml:"mobile"`
	Composite                    *bool  `yaml:"composite"`
	ScriptBasedPowerAndBacklight *bool  `yaml:"scriptBasedPowerAndBacklight"`
	FieldF                       *uint8 `yaml:"fieldF"`
	EDIDBitness                  *uint8 `yaml:"edidBitness"`
}

// HeadsSection lists 1-based display numbers, as printed by `nvcapctl dump`.
type HeadsSection struct {
	TV    []int `yaml:"tv"`
	Head1 []int `yaml:"head1"`
	Head2 []int `yaml:"head2"`
	Head3 []int `yaml:"head3"`
	Head4 []int `yaml:"head4"`
}

type ReportSection struct {
	JSON   string `yaml:"json"`
	PDF    string `yaml:"pdf"`
	QRSize int    `yaml:"qrSize"`
}

// Load decodes a selection file. Relative output paths are resolved against
// the file's directory.
func Load(path string) (File, error) {
	var cfg File
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	baseDir := filepath.Dir(path)
	resolvePath := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" {
			return ""
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Clean(filepath.Join(baseDir, p))
	}
	cfg.Report.JSON = resolvePath(cfg.Report.JSON)
	cfg.Report.PDF = resolvePath(cfg.Report.PDF)
	cfg.Journal = resolvePath(cfg.Journal)
	cfg.Logs.Directory = resolvePath(cfg.Logs.Directory)
	if cfg.Report.QRSize <= 0 {
		cfg.Report.QRSize = 128
	}
	if err := cfg.Heads.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Apply copies every set override onto w.
func (s NVCAPSection) Apply(w nvcap.Word) nvcap.Word {
	if s.Version != nil {
		w.Version = *s.Version
	}
	if s.Mobile != nil {
		w.Mobile = *s.Mobile
	}
	if s.Composite != nil {
		w.Composite = *s.Composite
	}
	if s.ScriptBasedPowerAndBacklight != nil {
		w.ScriptBasedPowerAndBacklight = *s.ScriptBasedPowerAndBacklight
	}
	if s.FieldF != nil {
		w.FieldF = *s.FieldF
	}
	if s.EDIDBitness != nil {
		w.EDIDBitness = *s.EDIDBitness
	}
	return w
}

type headList struct {
	head int
	nums []int
}

func (h HeadsSection) lists() []headList {
	return []headList{
		{nvcap.HeadTV, h.TV},
		{0, h.Head1},
		{1, h.Head2},
		{2, h.Head3},
		{3, h.Head4},
	}
}

// Empty reports whether no head lists were given.
func (h HeadsSection) Empty() bool {
	for _, l := range h.lists() {
		if len(l.nums) > 0 {
			return false
		}
	}
	return true
}

func (h HeadsSection) validate() error {
	for _, l := range h.lists() {
		for _, n := range l.nums {
			if n < 1 {
				return fmt.Errorf("%s: display number %d must be 1 or greater", nvcap.HeadName(l.head), n)
			}
		}
	}
	return nil
}

// Assignment converts the 1-based lists into a 0-based nvcap.Assignment.
func (h HeadsSection) Assignment() (nvcap.Assignment, error) {
	var a nvcap.Assignment
	if err := h.validate(); err != nil {
		return a, err
	}
	for _, l := range h.lists() {
		for _, n := range l.nums {
			if err := a.Add(l.head, n-1); err != nil {
				return a, err
			}
		}
	}
	return a, nil
}
