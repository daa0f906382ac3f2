// Package render prints decoded DCB tables, displays and NVCAP values for a
// terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"example.com/nvcapgate/internal/display"
	"example.com/nvcapgate/internal/nvcap"
	"example.com/nvcapgate/internal/vbios"
)

// Printer writes styled lines to w. With color disabled the output is plain
// text.
type Printer struct {
	w  io.Writer
	st styles
}

func New(w io.Writer, color bool) *Printer {
	return &Printer{w: w, st: newStyles(w, color)}
}

func (p *Printer) println(parts ...string) {
	fmt.Fprintln(p.w, strings.Join(parts, " "))
}

func (p *Printer) field(name string, value any) string {
	return p.st.label.Render(name+":") + " " + fmt.Sprint(value)
}

// Banner prints the tool title box.
func (p *Printer) Banner() {
	p.println(p.st.banner.Render("NVCAP Calculator"))
	p.println()
}

// Header prints where the DCB sits and what it declares.
func (p *Printer) Header(tbl vbios.Table) {
	h := tbl.Header
	p.println(p.st.section.Render("DCB"))
	p.println(
		p.field("Version", h.VersionString()),
		p.field("Offset", fmt.Sprintf("%#x", h.Offset)),
		p.field("HeaderSize", h.HeaderSize),
		p.field("Entries", h.EntryCount),
		p.field("EntrySize", h.EntrySize),
	)
	p.println(
		p.field("Populated", len(tbl.Entries)),
		p.field("Skipped", tbl.Skipped),
		p.field("Terminated", tbl.Terminated),
	)
	p.println()
}

// Entries prints every populated entry over two lines.
func (p *Printer) Entries(entries []vbios.Entry) {
	for _, e := range entries {
		p.println(p.st.index.Render("DCB Entry"), fmt.Sprintf("%#x", e.Index), p.field("Raw", fmt.Sprintf("%08x", e.Raw)))
		p.println(
			p.field("Type", fmt.Sprintf("%s (%#x)", e.Type, uint8(e.Type))),
			p.field("EdidPort", e.EDIDPort),
			p.field("Head", e.HeadMask),
			p.field("Connector", e.Connector),
			p.field("Bus", e.Bus),
			p.field("Loc", e.Location),
		)
		p.println(
			p.field("BDR", e.BDR),
			p.field("BBDR", e.BBDR),
			p.field("Resources", e.OutputResources),
			p.field("Virtual", e.Virtual),
		)
	}
}

// Displays prints the merged display list, numbered from 1.
func (p *Printer) Displays(displays []display.Display) {
	p.println(p.st.section.Render("Displays:"))
	for i, d := range displays {
		p.println(
			p.st.index.Render("("+strconv.Itoa(i+1)+")"),
			p.field("Type", fmt.Sprintf("%-8s", d.Kind)),
			p.field("Supported Heads", emptyFallback(d.HeadNumbers(), "none")),
			p.field("DCB Entries", joinInts(d.Entries)),
		)
	}
	p.println()
}

// Heads prints the display numbers placed on each head. The TV line only
// appears when a TV display exists, and heads 3 and 4 only when used.
func (p *Printer) Heads(displays []display.Display, a nvcap.Assignment) {
	p.println(p.st.section.Render("NVCAP Heads:"))
	if display.HasKind(displays, display.KindTV) || len(a.TV) > 0 {
		p.println(p.st.head.Render("TV"), "-", bracket(a.TV))
	}
	for h := 0; h < display.MaxHeads; h++ {
		if h >= 2 && len(a.Heads[h]) == 0 {
			continue
		}
		p.println(p.st.head.Render(strconv.Itoa(h+1)), "-", bracket(a.Heads[h]))
	}
	p.println()
}

// Options prints the non-mask fields of the word.
func (p *Printer) Options(w nvcap.Word) {
	p.println(p.field("Version", w.Version), p.field("Mobile", w.Mobile), p.field("Composite", w.Composite))
	p.println(
		p.field("Script Based Power/Backlight", w.ScriptBasedPowerAndBacklight),
		p.field("Field F", fmt.Sprintf("%#x", w.FieldF)),
		p.field("EDID Bitness", w.EDIDBitness),
	)
	p.println()
}

// NVCAP prints the final hex value.
func (p *Printer) NVCAP(hex string) {
	p.println(p.st.section.Render("NVCAP:"), p.st.value.Render(hex))
}

// Error prints a failure. Errors from nvcapctl already read "step: err".
func (p *Printer) Error(err error) {
	p.println(p.st.err.Render(err.Error()))
}

func bracket(list []int) string {
	nums := make([]int, len(list))
	for i, d := range list {
		nums[i] = d + 1
	}
	return "[" + strings.ReplaceAll(joinInts(nums), " ", "") + "]"
}

func joinInts(list []int) string {
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
