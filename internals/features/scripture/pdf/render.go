// Package pdf merender juan kitab jadi PDF: tiap karakter satu sel bertumpuk,
// pinyin kecil di atas, huruf di bawah.
package pdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"jingjuan_backend/internals/features/scripture/normalizer"

	"github.com/go-pdf/fpdf"
)

// ErrFontUnavailable: PDF_FONT_PATH kosong / file font tidak bisa dibaca
var ErrFontUnavailable = errors.New("pdf font unavailable")

const (
	fontFamily = "scripture"

	phoneticSize = 7.0
	charSize     = 14.0

	phoneticH = 4.0 // mm
	charH     = 7.0
	lineGap   = 2.0
	paraGap   = 4.0
	cellPad   = 0.8
	margin    = 15.0
)

// Placement: posisi satu unit di halaman (mm, relatif ke area isi).
type Placement struct {
	Unit normalizer.Unit
	Page int
	X, Y float64
	W    float64
}

// Layout membungkus unit per lebar area isi. width(u) = lebar sel unit.
// Break memaksa baris baru + jarak paragraf.
func Layout(units []normalizer.Unit, width func(normalizer.Unit) float64, areaW, areaH float64) []Placement {
	var (
		out        []Placement
		page       = 1
		x, y       float64
		rowH       = phoneticH + charH
		lineFilled bool
	)
	newLine := func(gap float64) {
		x = 0
		y += rowH + gap
		if y+rowH > areaH {
			page++
			y = 0
		}
		lineFilled = false
	}

	for _, u := range units {
		if u.Break {
			if lineFilled {
				newLine(paraGap)
			}
			continue
		}
		w := width(u)
		if lineFilled && x+w > areaW {
			newLine(lineGap)
		}
		out = append(out, Placement{Unit: u, Page: page, X: x, Y: y, W: w})
		x += w
		lineFilled = true
	}
	return out
}

// Render menulis PDF A4 ke w. fontPath wajib TTF yang punya glyph CJK.
func Render(w io.Writer, title string, units []normalizer.Unit, fontPath string) error {
	font, err := loadFont(fontPath)
	if err != nil {
		return err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetCreator("jingjuan", true)
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(false, margin)
	doc.AddUTF8FontFromBytes(fontFamily, "", font)
	if err := doc.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrFontUnavailable, err)
	}

	pageW, pageH := doc.GetPageSize()
	areaW := pageW - 2*margin
	headerH := 12.0
	areaH := pageH - 2*margin - headerH

	width := func(u normalizer.Unit) float64 {
		doc.SetFontSize(charSize)
		cw := doc.GetStringWidth(u.Char)
		doc.SetFontSize(phoneticSize)
		pw := doc.GetStringWidth(u.Phonetic)
		if pw > cw {
			cw = pw
		}
		return cw + 2*cellPad
	}

	// ukur dulu (butuh font aktif), baru tulis
	doc.SetFont(fontFamily, "", charSize)
	placed := Layout(units, width, areaW, areaH)

	addPage := func(no int) {
		doc.AddPage()
		doc.SetFont(fontFamily, "", 12)
		doc.SetXY(margin, margin)
		doc.CellFormat(areaW*0.8, 8, title, "", 0, "L", false, 0, "")
		doc.CellFormat(areaW*0.2, 8, fmt.Sprintf("%d", no), "", 0, "R", false, 0, "")
		doc.Line(margin, margin+9, pageW-margin, margin+9)
	}

	page := 0
	if len(placed) == 0 {
		addPage(1)
	}
	top := margin + headerH
	for _, p := range placed {
		for page < p.Page {
			page++
			addPage(page)
		}
		x := margin + p.X
		y := top + p.Y
		if ph := strings.TrimSpace(p.Unit.Phonetic); ph != "" {
			doc.SetFontSize(phoneticSize)
			doc.SetXY(x, y)
			doc.CellFormat(p.W, phoneticH, ph, "", 0, "C", false, 0, "")
		}
		doc.SetFontSize(charSize)
		doc.SetXY(x, y+phoneticH)
		doc.CellFormat(p.W, charH, p.Unit.Char, "", 0, "C", false, 0, "")
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func loadFont(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: PDF_FONT_PATH not set", ErrFontUnavailable)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontUnavailable, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrFontUnavailable, path)
	}
	return b, nil
}
