package legal

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/resodo/contact-crawler/internal/report"
)

// Unicode dash variants the model likes to emit; the core PDF fonts only
// cover cp1252 so everything is folded to a plain hyphen before layout.
var dashVariants = []string{
	"‐", "‑", "‒", "–", "—", "―", "−",
}

// PDFRenderer lays out the demand document as a letter-format PDF.
type PDFRenderer struct {
	clock report.Clock
}

// NewPDFRenderer builds a PDFRenderer.
func NewPDFRenderer(clock report.Clock) *PDFRenderer {
	return &PDFRenderer{clock: clock}
}

// RenderPDF renders the document with the request's party metadata and the
// extracted respondent contacts, returning the PDF bytes.
func (r *PDFRenderer) RenderPDF(doc string, req report.Request, contacts []report.Contact) ([]byte, error) {
	doc = normalizeDashes(doc)

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	// Header.
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, 12, "FORMAL DEMAND FOR RESOLUTION", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Metadata block.
	pdf.SetFont("Helvetica", "", 11)
	meta := fmt.Sprintf(
		"Date: %s\nParties Involved: %s (Filer) vs. %s (Respondent)\nFiler Contact Information: %s\nRespondent Contact Information: %s",
		r.clock.Now().Format("January 2, 2006"),
		req.Filer,
		req.Respondent,
		formatFilerInfo(req.FilerInfo),
		formatContacts(contacts),
	)
	pdf.MultiCell(0, 6, translate(meta), "", "L", false)
	pdf.Ln(4)

	// Body paragraphs, split on blank lines as the generator emits them.
	for _, paragraph := range strings.Split(doc, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		pdf.MultiCell(0, 5.5, translate(paragraph), "", "J", false)
		pdf.Ln(3)
	}

	// Acknowledgement and signature.
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 15)
	pdf.SetTextColor(52, 73, 94)
	pdf.CellFormat(0, 9, "ACKNOWLEDGEMENT AND SIGNATURE", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(44, 62, 80)
	pdf.MultiCell(0, 5.5, translate(
		"I, the filer, hereby declare under penalty of perjury that the foregoing is true and correct to the best of my knowledge, information, and belief."),
		"", "J", false)
	pdf.Ln(8)
	pdf.CellFormat(0, 6,
		"Signature:__________________________________________________Date:____________",
		"", 1, "L", false, 0, "")

	// Footer.
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(127, 140, 141)
	pdf.CellFormat(0, 6, "Confidential Legal Document - Do not distribute without authorization",
		"", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the download filename for a respondent's document.
func Filename(respondent string) string {
	return fmt.Sprintf("Resolution for %s.pdf", respondent)
}

func normalizeDashes(s string) string {
	for _, dash := range dashVariants {
		s = strings.ReplaceAll(s, dash, "-")
	}
	return s
}

func formatContacts(contacts []report.Contact) string {
	if len(contacts) == 0 {
		return "N/A"
	}
	parts := make([]string, 0, len(contacts))
	for _, c := range contacts {
		parts = append(parts, fmt.Sprintf("%s: %s", capitalize(string(c.Type)), c.Value))
	}
	return strings.Join(parts, ", ")
}

func formatFilerInfo(info []string) string {
	if len(info) == 0 {
		return "N/A"
	}
	return strings.Join(info, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
