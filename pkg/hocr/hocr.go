/*
Package hocr decodes hOCR documents, the XHTML-based format Tesseract and
other OCR engines use to report layout, bounding boxes and confidences.

The hierarchy mirrors the hOCR class structure:
Document -> Pages (ocr_page) -> Areas (ocr_carea) -> Paragraphs (ocr_par)
-> Lines (ocr_line) -> Words (ocrx_word).
*/
package hocr

import "strings"

// Document is a parsed hOCR document.
type Document struct {
	Pages []Page
}

// Page corresponds to an element with class ocr_page.
type Page struct {
	ID         string
	ImageName  string
	PageNumber int
	BBox       BBox
	Areas      []Area
}

// Area corresponds to an element with class ocr_carea.
type Area struct {
	ID         string
	BBox       BBox
	Paragraphs []Paragraph
}

// Paragraph corresponds to an element with class ocr_par.
type Paragraph struct {
	ID    string
	Lang  string
	BBox  BBox
	Lines []Line
}

// Line corresponds to an element with class ocr_line (and its header and
// caption variants).
type Line struct {
	ID       string
	BBox     BBox
	Baseline string
	Words    []Word
}

// Word corresponds to an element with class ocrx_word.
type Word struct {
	ID         string
	Text       string
	BBox       BBox
	Confidence float64
}

// BBox is a rectangle in image pixel coordinates, top-left origin.
type BBox struct {
	X1, Y1, X2, Y2 int
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b BBox) Height() int { return b.Y2 - b.Y1 }

// PlainText flattens the document back to text, one line per ocr_line,
// with an empty line between pages.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for i, page := range d.Pages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, area := range page.Areas {
			for _, par := range area.Paragraphs {
				for _, line := range par.Lines {
					for j, word := range line.Words {
						if j > 0 {
							sb.WriteByte(' ')
						}
						sb.WriteString(word.Text)
					}
					sb.WriteByte('\n')
				}
			}
		}
	}
	return sb.String()
}

// Words returns all words of the document in reading order.
func (d *Document) Words() []Word {
	var words []Word
	for _, page := range d.Pages {
		for _, area := range page.Areas {
			for _, par := range area.Paragraphs {
				for _, line := range par.Lines {
					words = append(words, line.Words...)
				}
			}
		}
	}
	return words
}
