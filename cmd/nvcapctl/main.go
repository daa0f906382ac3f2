package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"example.com/nvcapgate/internal/common"
	"example.com/nvcapgate/internal/config"
	"example.com/nvcapgate/internal/nvcap"
	"example.com/nvcapgate/internal/render"
	"example.com/nvcapgate/internal/report"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code. Failures
// are printed to stderr as "step: err".
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stdout)
		return 0
	}
	var err error
	switch args[0] {
	case "dump":
		err = dumpCmd(args[1:], stdout)
	case "calc":
		err = calcCmd(args[1:], stdout)
	case "suggest":
		err = suggestCmd(args[1:], stdout)
	case "history":
		err = historyCmd(args[1:], stdout)
	default:
		usage(stdout)
		return 0
	}
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	render.New(stderr, colorRequested(args[1:])).Error(err)
	return 1
}

// colorRequested reports whether --no-color is absent from args. It scans
// the raw arguments so errors raised while parsing flags honour it too.
func colorRequested(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != "no-color" {
			continue
		}
		if !hasValue {
			return false
		}
		if on, err := strconv.ParseBool(value); err == nil {
			return !on
		}
	}
	return true
}

// parseArgs parses flags and rejects leftover positional arguments. Boolean
// flags only take a value as --flag=value, so "--mobile false" would
// otherwise drop "false" and leave the flag set.
func parseArgs(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `nvcapctl %s (built %s) <command> [options]

Commands:
  dump     --rom <vbios.rom> [--no-color]
  calc     --rom <vbios.rom> [--config <selection.yaml>] [--tv 3] [--head1 1] [--head2 2,4] [--head3 ..] [--head4 ..]
           [--suggest] [--version 5] [--field-f 0x0f] [--mobile=true] [--composite=false] [--script-power]
           [--edid-bitness n] [--json <report.json>] [--pdf <report.pdf>] [--qr-size 128] [--journal <history.jsonl>]
  suggest  --rom <vbios.rom>
  history  --journal <history.jsonl>

Display numbers are 1-based, as printed by dump. Every command accepts --log-dir <dir>.
`, version, buildDate)
}

type commonFlags struct {
	logDir  *string
	noColor *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		logDir:  fs.String("log-dir", "", "also write logs to a rotating file in this directory"),
		noColor: fs.Bool("no-color", false, "disable terminal styles"),
	}
}

func (c commonFlags) startLogging(cfg common.LogConfig) (func() error, error) {
	if *c.logDir != "" {
		cfg.Directory = *c.logDir
	}
	closeLog, err := common.SetupFileLogging(cfg)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return closeLog, nil
}

func loadROM(path string) ([]byte, nvcap.Result, error) {
	image, err := common.LoadBytes(path)
	if err != nil {
		return nil, nvcap.Result{}, fmt.Errorf("load rom: %w", err)
	}
	res, err := nvcap.Decode(image)
	if err != nil {
		return image, res, fmt.Errorf("decode dcb: %w", err)
	}
	common.Logf("decoded %s: DCB %s at %#x, %d entries, %d displays",
		path, res.Table.Header.VersionString(), res.Table.Header.Offset, len(res.Table.Entries), len(res.Displays))
	return image, res, nil
}

func dumpCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	rom := fs.String("rom", "", "VBIOS image")
	cf := addCommonFlags(fs)
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if *rom == "" {
		return errors.New("required: --rom")
	}
	closeLog, err := cf.startLogging(common.LogConfig{})
	if err != nil {
		return err
	}
	defer closeLog()

	_, res, err := loadROM(*rom)
	if err != nil {
		return err
	}
	p := render.New(stdout, !*cf.noColor)
	p.Banner()
	p.Header(res.Table)
	p.Entries(res.Table.Entries)
	fmt.Fprintln(stdout)
	p.Displays(res.Displays)
	return nil
}

func calcCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	rom := fs.String("rom", "", "VBIOS image")
	configPath := fs.String("config", "", "selection YAML file")
	var tv, head1, head2, head3, head4 displayList
	fs.Var(&tv, "tv", "displays for the TV mask")
	fs.Var(&head1, "head1", "displays for head 1")
	fs.Var(&head2, "head2", "displays for head 2")
	fs.Var(&head3, "head3", "displays for head 3")
	fs.Var(&head4, "head4", "displays for head 4")
	suggest := fs.Bool("suggest", false, "use the suggested head assignment when no heads are given")
	var nvVersion, fieldF, edidBitness optUint8
	fs.Var(&nvVersion, "version", "NVCAP version (5 for 8000 series and newer, 4 for 6000/7000)")
	fs.Var(&fieldF, "field-f", "field F (0x0f for 300 series and newer, 0x07 for older GPUs)")
	fs.Var(&edidBitness, "edid-bitness", "EDID bitness byte")
	var mobile, composite, scriptPower optBool
	fs.Var(&mobile, "mobile", "override the mobile flag")
	fs.Var(&composite, "composite", "override the composite flag")
	fs.Var(&scriptPower, "script-power", "script based power and backlight")
	jsonOut := fs.String("json", "", "write a JSON report")
	pdfOut := fs.String("pdf", "", "write a PDF report")
	qrSize := fs.Int("qr-size", 0, "QR code size in pixels for the PDF report")
	journalPath := fs.String("journal", "", "append the result to a JSONL history")
	cf := addCommonFlags(fs)
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if *rom == "" {
		return errors.New("required: --rom")
	}

	var cfg config.File
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	closeLog, err := cf.startLogging(cfg.Logs)
	if err != nil {
		return err
	}
	defer closeLog()

	image, res, err := loadROM(*rom)
	if err != nil {
		return err
	}

	w := cfg.NVCAP.Apply(nvcap.Default(res.Displays))
	if nvVersion.set {
		w.Version = nvVersion.value
	}
	if fieldF.set {
		w.FieldF = fieldF.value
	}
	if edidBitness.set {
		w.EDIDBitness = edidBitness.value
	}
	if mobile.set {
		w.Mobile = mobile.value
	}
	if composite.set {
		w.Composite = composite.value
	}
	if scriptPower.set {
		w.ScriptBasedPowerAndBacklight = scriptPower.value
	}

	flagHeads := config.HeadsSection{TV: tv, Head1: head1, Head2: head2, Head3: head3, Head4: head4}
	var a nvcap.Assignment
	switch {
	case !flagHeads.Empty():
		a, err = flagHeads.Assignment()
	case !cfg.Heads.Empty():
		a, err = cfg.Heads.Assignment()
	case *suggest || cfg.Suggest:
		a = nvcap.SuggestAssignment(res.Displays)
		common.Logf("using suggested head assignment")
	}
	if err != nil {
		return fmt.Errorf("heads: %w", err)
	}

	w, err = nvcap.Build(w, res.Displays, a)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	value := nvcap.FormatHex(w.Bytes())

	p := render.New(stdout, !*cf.noColor)
	p.Displays(res.Displays)
	p.Heads(res.Displays, a)
	p.Options(w)
	p.NVCAP(value)

	rep := report.New(*rom, image, res, a, w)
	if out := firstNonEmpty(*jsonOut, cfg.Report.JSON); out != "" {
		if err := report.SaveJSON(rep, out); err != nil {
			return fmt.Errorf("json report: %w", err)
		}
		common.Logf("wrote %s", out)
	}
	if out := firstNonEmpty(*pdfOut, cfg.Report.PDF); out != "" {
		size := cfg.Report.QRSize
		if *qrSize > 0 {
			size = *qrSize
		}
		if err := report.SavePDF(rep, out, size); err != nil {
			return fmt.Errorf("pdf report: %w", err)
		}
		common.Logf("wrote %s", out)
	}
	if path := firstNonEmpty(*journalPath, cfg.Journal); path != "" {
		entry := common.JournalEntry{
			ROM:        *rom,
			ROMSha256:  rep.ROMSha256,
			DCBVersion: rep.DCB.Version,
			Heads:      journalHeads(a),
			NVCAP:      value,
		}
		if err := common.NewJournal(path).Append(entry); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}
	return nil
}

func suggestCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("suggest", flag.ContinueOnError)
	rom := fs.String("rom", "", "VBIOS image")
	cf := addCommonFlags(fs)
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if *rom == "" {
		return errors.New("required: --rom")
	}
	closeLog, err := cf.startLogging(common.LogConfig{})
	if err != nil {
		return err
	}
	defer closeLog()

	_, res, err := loadROM(*rom)
	if err != nil {
		return err
	}
	a := nvcap.SuggestAssignment(res.Displays)
	p := render.New(stdout, !*cf.noColor)
	p.Displays(res.Displays)
	p.Heads(res.Displays, a)
	fmt.Fprintln(stdout, "calc flags:", assignmentFlags(a))
	return nil
}

func historyCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	journalPath := fs.String("journal", "", "JSONL history written by calc")
	cf := addCommonFlags(fs)
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if *journalPath == "" {
		return errors.New("required: --journal")
	}
	closeLog, err := cf.startLogging(common.LogConfig{})
	if err != nil {
		return err
	}
	defer closeLog()

	entries, err := common.ReadJournal(*journalPath)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "no calculations recorded")
		return nil
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tROM\tDCB\tHEADS\tNVCAP")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Ts.Local().Format(time.RFC3339),
			e.ROM,
			e.DCBVersion,
			formatJournalHeads(e.Heads),
			e.NVCAP,
		)
	}
	return tw.Flush()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var journalHeadNames = []string{"tv", "head1", "head2", "head3", "head4"}

func assignmentLists(a nvcap.Assignment) [][]int {
	return [][]int{a.TV, a.Heads[0], a.Heads[1], a.Heads[2], a.Heads[3]}
}

func oneBased(list []int) []int {
	out := make([]int, len(list))
	for i, d := range list {
		out[i] = d + 1
	}
	return out
}

func journalHeads(a nvcap.Assignment) map[string][]int {
	out := make(map[string][]int)
	for i, list := range assignmentLists(a.Sorted()) {
		if len(list) > 0 {
			out[journalHeadNames[i]] = oneBased(list)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func formatJournalHeads(heads map[string][]int) string {
	var parts []string
	for _, name := range journalHeadNames {
		if nums, ok := heads[name]; ok {
			parts = append(parts, name+"="+joinNums(nums))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// assignmentFlags renders a as the calc flags that reproduce it.
func assignmentFlags(a nvcap.Assignment) string {
	var parts []string
	for i, list := range assignmentLists(a.Sorted()) {
		if len(list) > 0 {
			parts = append(parts, "--"+journalHeadNames[i]+" "+joinNums(oneBased(list)))
		}
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}

func joinNums(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
