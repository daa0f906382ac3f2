package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"example.com/nvcapgate/internal/display"
	"example.com/nvcapgate/internal/nvcap"
)

// SavePDF renders the report into a PDF document with a QR code of the NVCAP
// value. qrSize is the QR bitmap size in pixels.
func SavePDF(rep Report, out string, qrSize int) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("NVCAP Report", false)
	pdf.SetAuthor("nvcapctl", false)
	pdf.SetCreator("nvcapctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "NVCAP Report")
	if err := addSummarySection(pdf, rep, qrSize); err != nil {
		return err
	}
	addEntriesSection(pdf, rep.Entries)
	addDisplaysSection(pdf, rep)
	addWordSection(pdf, rep.Word)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

type pdfItem struct {
	label string
	value string
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, rep Report, qrSize int) error {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	top := pdf.GetY()
	pdf.SetFont("Helvetica", "", 10)
	items := []pdfItem{
		{label: "ROM", value: emptyFallback(rep.ROM, "-")},
		{label: "SHA-256", value: shortHash(rep.ROMSha256)},
		{label: "DCB Version", value: rep.DCB.Version},
		{label: "DCB Offset", value: fmt.Sprintf("0x%x", rep.DCB.Offset)},
		{label: "Entries", value: fmt.Sprintf("%d populated, %d skipped, %d declared", len(rep.Entries), rep.DCB.Skipped, rep.DCB.EntryCount)},
		{label: "Displays", value: strconv.Itoa(len(rep.Displays))},
		{label: "NVCAP", value: rep.NVCAP},
	}
	for _, item := range items {
		pdf.CellFormat(30, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(110, 6, item.value, "", 1, "L", false, 0, "")
	}
	bottom := pdf.GetY()

	png, err := NVCAPToQR(rep.NVCAP, qrSize)
	if err != nil {
		return fmt.Errorf("nvcap qr: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("nvcap-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("nvcap-qr", 160, top, 35, 35, false, opts, 0, "")
	if bottom < top+37 {
		bottom = top + 37
	}
	pdf.SetY(bottom)
	pdf.Ln(2)
	return nil
}

func addEntriesSection(pdf *gofpdf.Fpdf, entries []EntryRow) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "DCB Entries")
	pdf.Ln(9)

	if len(entries) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No populated DCB entries.", "", "L", false)
		pdf.Ln(4)
		return
	}

	headers := []string{"Entry", "Type", "Raw", "EDID", "Heads", "Conn", "Bus", "Loc", "Res", "Virtual"}
	widths := []float64{14, 26, 26, 14, 18, 14, 14, 14, 14, 26}
	renderHeaderRow(pdf, headers, widths)

	pdf.SetFont("Helvetica", "", 9)
	for _, e := range entries {
		values := []string{
			fmt.Sprintf("0x%x", e.Index),
			fmt.Sprintf("%s (0x%x)", e.Type, e.TypeCode),
			fmt.Sprintf("%08x", e.Raw),
			strconv.Itoa(int(e.EDIDPort)),
			fmt.Sprintf("%04b", e.HeadMask),
			strconv.Itoa(int(e.Connector)),
			strconv.Itoa(int(e.Bus)),
			strconv.Itoa(int(e.Location)),
			fmt.Sprintf("0x%x", e.OutputResources),
			yesNo(e.Virtual),
		}
		renderTableRow(pdf, widths, values, 5)
	}
	pdf.Ln(4)
}

func addDisplaysSection(pdf *gofpdf.Fpdf, rep Report) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Displays")
	pdf.Ln(9)

	headers := []string{"#", "Kind", "DCB Entries", "Supported Heads", "Assigned"}
	widths := []float64{12, 28, 34, 50, 56}
	renderHeaderRow(pdf, headers, widths)

	pdf.SetFont("Helvetica", "", 9)
	for i, d := range rep.Displays {
		values := []string{
			strconv.Itoa(i + 1),
			d.Kind.String(),
			joinInts(d.Entries, 0),
			emptyFallback(d.HeadNumbers(), "-"),
			emptyFallback(assignedHeads(rep.Assignment, i), "-"),
		}
		renderTableRow(pdf, widths, values, 5)
	}
	pdf.Ln(4)
}

func addWordSection(pdf *gofpdf.Fpdf, w nvcap.Word) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Capability Word")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	items := []pdfItem{
		{label: "Version", value: strconv.Itoa(int(w.Version))},
		{label: "Mobile", value: yesNo(w.Mobile)},
		{label: "Composite", value: yesNo(w.Composite)},
		{label: "TV Mask", value: fmt.Sprintf("0x%04x", w.TVMask)},
	}
	for h, mask := range w.HeadMasks {
		items = append(items, pdfItem{label: fmt.Sprintf("Head %d Mask", h+1), value: fmt.Sprintf("0x%04x", mask)})
	}
	items = append(items, []pdfItem{
		{label: "Script Power/Backlight", value: yesNo(w.ScriptBasedPowerAndBacklight)},
		{label: "Field F", value: fmt.Sprintf("0x%02x", w.FieldF)},
		{label: "EDID Bitness", value: strconv.Itoa(int(w.EDIDBitness))},
	}...)
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
}

func renderHeaderRow(pdf *gofpdf.Fpdf, headers []string, widths []float64) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

// assignedHeads lists the heads display i was placed on, e.g. "1, TV".
func assignedHeads(a nvcap.Assignment, i int) string {
	var parts []string
	for h := 0; h < display.MaxHeads; h++ {
		if containsInt(a.Heads[h], i) {
			parts = append(parts, strconv.Itoa(h+1))
		}
	}
	if containsInt(a.TV, i) {
		parts = append(parts, "TV")
	}
	return strings.Join(parts, ", ")
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func joinInts(list []int, offset int) string {
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = strconv.Itoa(v + offset)
	}
	return strings.Join(parts, ", ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16] + "..."
	}
	return emptyFallback(h, "-")
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
