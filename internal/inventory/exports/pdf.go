package exports

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

var pdfColWidths = []float64{90, 20, 35, 35, 35, 30}

// ErrFontRequired: 組み込みフォント（cp1252）で表せない文字がある
var ErrFontRequired = errors.New("pdf export needs app.pdf_font_path for non-Latin text")

// WritePDF: fontPath に TTF があれば日本語で出す。無ければ Helvetica（cp1252）で、
// 表せない文字を含むなら何も書かずに ErrFontRequired
func WritePDF(w io.Writer, title string, header []string, recs []Record, fontPath string) error {
	if fontPath == "" {
		if err := checkCP1252(title, header, recs); err != nil {
			return err
		}
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	family := "Helvetica"
	tr := func(s string) string { return s }
	if fontPath != "" {
		pdf.AddUTF8Font("jp", "", fontPath)
		if pdf.Err() {
			return pdf.Error()
		}
		family = "jp"
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddPage()
	pdf.SetFont(family, "", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")

	pdf.SetFont(family, "", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(pdfColWidths[i], 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	for _, rec := range recs {
		for i, cell := range rec.Cells() {
			align := "L"
			if i == 1 {
				align = "R"
			}
			pdf.CellFormat(pdfColWidths[i], 7, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.Output(w)
}

func checkCP1252(title string, header []string, recs []Record) error {
	enc := charmap.Windows1252.NewEncoder()
	check := func(s string) error {
		if _, err := enc.String(s); err != nil {
			return fmt.Errorf("%w: %q", ErrFontRequired, s)
		}
		return nil
	}
	if err := check(title); err != nil {
		return err
	}
	for _, h := range header {
		if err := check(h); err != nil {
			return err
		}
	}
	for _, rec := range recs {
		for _, cell := range rec.Cells() {
			if err := check(cell); err != nil {
				return err
			}
		}
	}
	return nil
}
