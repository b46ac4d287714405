package hocr

import (
	"testing"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en" lang="en">
 <head>
  <title></title>
  <meta http-equiv="Content-Type" content="text/html;charset=utf-8"/>
  <meta name='ocr-system' content='tesseract 5.3.4'/>
 </head>
 <body>
  <div class='ocr_page' id='page_1' title='image "readme.png"; bbox 0 0 640 480; ppageno 0'>
   <div class='ocr_carea' id='block_1_1' title="bbox 36 92 604 144">
    <p class='ocr_par' id='par_1_1' lang='eng' title="bbox 36 92 604 144">
     <span class='ocr_line' id='line_1_1' title="bbox 36 92 604 122; baseline 0 -6; x_size 29; x_descenders 6; x_ascenders 7">
      <span class='ocrx_word' id='word_1_1' title='bbox 36 92 96 122; x_wconf 96'>Lorem</span>
      <span class='ocrx_word' id='word_1_2' title='bbox 104 92 172 122; x_wconf 95'>ipsum</span>
     </span>
     <span class='ocr_line' id='line_1_2' title="bbox 36 126 300 144; baseline 0 0">
      <span class='ocrx_word' id='word_1_3' title='bbox 36 126 120 144; x_wconf 91'>dolor</span>
     </span>
    </p>
   </div>
  </div>
 </body>
</html>`

func TestParse(t *testing.T) {
	doc, err := ParseString(sample)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("want 1 page, got %d", len(doc.Pages))
	}
	page := doc.Pages[0]
	if page.ImageName != "readme.png" {
		t.Errorf("want image name readme.png, got %q", page.ImageName)
	}
	if page.BBox.Width() != 640 || page.BBox.Height() != 480 {
		t.Errorf("page bbox decoded wrong: %+v", page.BBox)
	}
	if len(page.Areas) != 1 || len(page.Areas[0].Paragraphs) != 1 {
		t.Fatalf("layout decoded wrong: %+v", page)
	}
	lines := page.Areas[0].Paragraphs[0].Lines
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	if lines[0].Baseline != "0 -6" {
		t.Errorf("want baseline '0 -6', got %q", lines[0].Baseline)
	}
	word := lines[0].Words[0]
	if word.Text != "Lorem" || word.Confidence != 96 {
		t.Errorf("word decoded wrong: %+v", word)
	}
	if word.BBox != (BBox{36, 92, 96, 122}) {
		t.Errorf("word bbox decoded wrong: %+v", word.BBox)
	}
}

func TestPlainText(t *testing.T) {
	doc, err := ParseString(sample)
	if err != nil {
		t.Fatal(err)
	}
	want := "Lorem ipsum\ndolor\n"
	if got := doc.PlainText(); got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestWords(t *testing.T) {
	doc, err := ParseString(sample)
	if err != nil {
		t.Fatal(err)
	}
	words := doc.Words()
	if len(words) != 3 {
		t.Fatalf("want 3 words, got %d", len(words))
	}
	if words[2].Text != "dolor" {
		t.Errorf("reading order broken: %+v", words)
	}
}

func TestParseEmpty(t *testing.T) {
	doc, err := ParseString("<html><body></body></html>")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("want no pages, got %d", len(doc.Pages))
	}
}
