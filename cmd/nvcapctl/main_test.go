package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"example.com/nvcapgate/internal/common"
	"example.com/nvcapgate/internal/nvcap"
	"example.com/nvcapgate/internal/report"
	"example.com/nvcapgate/internal/vbios"
)

const laptopNVCAP = "05010100 08000100 06000000 0000000f 00000000"

// writeSyntheticROM writes an image with an LVDS panel, a VGA+DVI-I pair on
// bus 0 and a TV out.
func writeSyntheticROM(t *testing.T, path string) {
	t.Helper()
	entries := []vbios.Entry{
		{Type: vbios.ConnLVDS, HeadMask: 0b0001, Bus: 3},
		{Type: vbios.ConnCRT, HeadMask: 0b0011, Bus: 0},
		{Type: vbios.ConnTMDS, HeadMask: 0b0011, Bus: 0},
		{Type: vbios.ConnTV, HeadMask: 0b0011, Bus: 1},
	}
	words := make([]uint32, len(entries))
	for i, e := range entries {
		words[i] = vbios.EncodeEntryWord(e)
	}
	image, err := vbios.BuildImage(vbios.ImageSpec{Entries: words, Pad: 64})
	if err != nil {
		t.Fatalf("BuildImage: %v", err)
	}
	if err := os.WriteFile(path, image, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestCalcCmdWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	rom := filepath.Join(dir, "laptop.rom")
	writeSyntheticROM(t, rom)
	jsonOut := filepath.Join(dir, "report.json")
	pdfOut := filepath.Join(dir, "report.pdf")
	journal := filepath.Join(dir, "history.jsonl")

	var out bytes.Buffer
	err := calcCmd([]string{
		"--rom", rom,
		"--suggest",
		"--json", jsonOut,
		"--pdf", pdfOut,
		"--journal", journal,
		"--no-color",
	}, &out)
	if err != nil {
		t.Fatalf("calcCmd: %v", err)
	}
	if !strings.Contains(out.String(), "NVCAP: "+laptopNVCAP) {
		t.Fatalf("output missing NVCAP line:\n%s", out.String())
	}

	rep, err := report.LoadJSON(jsonOut)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if rep.NVCAP != laptopNVCAP {
		t.Fatalf("report NVCAP = %q, want %q", rep.NVCAP, laptopNVCAP)
	}
	if info, err := os.Stat(pdfOut); err != nil || info.Size() == 0 {
		t.Fatalf("pdf report missing: %v", err)
	}

	entries, err := common.ReadJournal(journal)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("journal entries = %d, want 1", len(entries))
	}
	if got := entries[0].Heads["head2"]; len(got) != 1 || got[0] != 2 {
		t.Fatalf("journal head2 = %v, want [2]", got)
	}

	var hist bytes.Buffer
	if err := historyCmd([]string{"--journal", journal}, &hist); err != nil {
		t.Fatalf("historyCmd: %v", err)
	}
	for _, want := range []string{"NVCAP", laptopNVCAP, "tv=3 head1=1 head2=2"} {
		if !strings.Contains(hist.String(), want) {
			t.Fatalf("history missing %q:\n%s", want, hist.String())
		}
	}
}

func TestCalcCmdConfigAndFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	rom := filepath.Join(dir, "laptop.rom")
	writeSyntheticROM(t, rom)
	cfgPath := filepath.Join(dir, "selection.yaml")
	cfg := []byte(`nvcap:
  fieldF: 0x07
  composite: false
heads:
  head1: [1]
  head2: [2]
report:
  json: out/report.json
`)
	if err := os.WriteFile(cfgPath, cfg, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "out"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	var out bytes.Buffer
	if err := calcCmd([]string{"--rom", rom, "--config", cfgPath, "--version", "4", "--no-color"}, &out); err != nil {
		t.Fatalf("calcCmd: %v", err)
	}
	rep, err := report.LoadJSON(filepath.Join(dir, "out", "report.json"))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	w := rep.Word
	if w.Version != 4 || w.FieldF != 0x07 || w.Composite || !w.Mobile {
		t.Fatalf("word = %+v", w)
	}
	if w.TVMask != 0 || w.HeadMasks[0] != 0x0001 || w.HeadMasks[1] != 0x0006 {
		t.Fatalf("masks = %#x %v", w.TVMask, w.HeadMasks)
	}
}

func TestCalcCmdRejectsInconsistentHeads(t *testing.T) {
	dir := t.TempDir()
	rom := filepath.Join(dir, "laptop.rom")
	writeSyntheticROM(t, rom)

	cases := map[string][]string{
		"unsupported head": {"--head2", "1"},
		"non-tv on tv":     {"--tv", "1"},
		"unknown display":  {"--head1", "9"},
	}
	for name, extra := range cases {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			err := calcCmd(append([]string{"--rom", rom}, extra...), &out)
			if !errors.Is(err, nvcap.ErrConfigurationInconsistent) {
				t.Fatalf("calcCmd err = %v, want ErrConfigurationInconsistent", err)
			}
			if !strings.HasPrefix(err.Error(), "pack: ") {
				t.Fatalf("error %q missing step prefix", err)
			}
		})
	}
}

func TestDumpAndSuggestCmd(t *testing.T) {
	dir := t.TempDir()
	rom := filepath.Join(dir, "laptop.rom")
	writeSyntheticROM(t, rom)

	var dump bytes.Buffer
	if err := dumpCmd([]string{"--rom", rom, "--no-color"}, &dump); err != nil {
		t.Fatalf("dumpCmd: %v", err)
	}
	for _, want := range []string{"DCB Entry 0x3", "Type: TV (0x1)", "(2) Type: DVI"} {
		if !strings.Contains(dump.String(), want) {
			t.Fatalf("dump missing %q:\n%s", want, dump.String())
		}
	}

	var sug bytes.Buffer
	if err := suggestCmd([]string{"--rom", rom, "--no-color"}, &sug); err != nil {
		t.Fatalf("suggestCmd: %v", err)
	}
	if !strings.Contains(sug.String(), "calc flags: --tv 3 --head1 1 --head2 2") {
		t.Fatalf("suggest output:\n%s", sug.String())
	}
}

func TestCmdErrors(t *testing.T) {
	var out bytes.Buffer
	if err := calcCmd(nil, &out); err == nil || err.Error() != "required: --rom" {
		t.Fatalf("calcCmd without rom err = %v", err)
	}
	err := dumpCmd([]string{"--rom", filepath.Join(t.TempDir(), "missing.rom")}, &out)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("dumpCmd missing rom err = %v, want ErrNotFound", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.rom")
	if err := os.WriteFile(bad, make([]byte, 0x200), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	err = dumpCmd([]string{"--rom", bad}, &out)
	if !errors.Is(err, vbios.ErrCorruptImage) && !errors.Is(err, vbios.ErrIncompatibleHardware) {
		t.Fatalf("dumpCmd zero rom err = %v", err)
	}
	if !strings.HasPrefix(err.Error(), "decode dcb: ") {
		t.Fatalf("error %q missing step prefix", err)
	}
}

func TestCalcCmdBoolFlagValues(t *testing.T) {
	dir := t.TempDir()
	rom := filepath.Join(dir, "laptop.rom")
	writeSyntheticROM(t, rom)

	var out bytes.Buffer
	err := calcCmd([]string{"--rom", rom, "--no-color", "--mobile", "false"}, &out)
	if err == nil || err.Error() != "unexpected arguments: false" {
		t.Fatalf("calcCmd --mobile false err = %v, want unexpected arguments", err)
	}
	if strings.Contains(out.String(), "NVCAP:") {
		t.Fatalf("calc printed a value despite the error:\n%s", out.String())
	}

	out.Reset()
	if err := calcCmd([]string{"--rom", rom, "--no-color", "--suggest", "--mobile=false"}, &out); err != nil {
		t.Fatalf("calcCmd --mobile=false: %v", err)
	}
	if !strings.Contains(out.String(), "Mobile: false") || !strings.Contains(out.String(), "NVCAP: 05000100 ") {
		t.Fatalf("mobile override not applied:\n%s", out.String())
	}

	for name, cmd := range map[string]func([]string, io.Writer) error{
		"dump":    dumpCmd,
		"suggest": suggestCmd,
	} {
		if err := cmd([]string{"--rom", rom, "extra"}, &out); err == nil || err.Error() != "unexpected arguments: extra" {
			t.Fatalf("%s with positional argument err = %v", name, err)
		}
	}
	if err := historyCmd([]string{"--journal", filepath.Join(dir, "h.jsonl"), "extra"}, &out); err == nil {
		t.Fatalf("history with positional argument succeeded")
	}
}

func TestRunPrintsStepErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.rom")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"dump", "--rom", missing, "--no-color"}, &stdout, &stderr); code != 1 {
		t.Fatalf("run exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr.String(), "load rom: ") {
		t.Fatalf("stderr = %q, want load rom prefix", stderr.String())
	}
	if strings.Contains(stderr.String(), "\x1b[") {
		t.Fatalf("--no-color error contains escape sequences: %q", stderr.String())
	}

	stdout.Reset()
	stderr.Reset()
	if code := run(nil, &stdout, &stderr); code != 0 || !strings.Contains(stdout.String(), "Commands:") {
		t.Fatalf("run without command = %d, stdout %q", code, stdout.String())
	}
}

func TestColorRequested(t *testing.T) {
	cases := []struct {
		args []string
		want bool
	}{
		{nil, true},
		{[]string{"--rom", "x.rom"}, true},
		{[]string{"--no-color"}, false},
		{[]string{"-no-color"}, false},
		{[]string{"--no-color=false"}, true},
		{[]string{"--no-color=true"}, false},
		{[]string{"--", "--no-color"}, true},
	}
	for _, tc := range cases {
		if got := colorRequested(tc.args); got != tc.want {
			t.Fatalf("colorRequested(%q) = %v, want %v", tc.args, got, tc.want)
		}
	}
}
