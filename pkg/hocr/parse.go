package hocr

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Parse decodes an hOCR document from r. Elements without a recognized
// ocr_* class are descended into but not represented in the result, so
// engine-specific wrappers don't break decoding.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	walk(root, doc)
	return doc, nil
}

// ParseString decodes an hOCR document from a string.
func ParseString(data string) (*Document, error) {
	return Parse(strings.NewReader(data))
}

func walk(n *html.Node, doc *Document) {
	if n.Type == html.ElementNode {
		switch class(n) {
		case "ocr_page":
			doc.Pages = append(doc.Pages, parsePage(n, len(doc.Pages)+1))
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, doc)
	}
}

func parsePage(n *html.Node, num int) Page {
	props := titleProps(n)
	page := Page{
		ID:         attr(n, "id"),
		PageNumber: num,
		BBox:       parseBBox(props["bbox"]),
	}
	if img, ok := props["image"]; ok {
		page.ImageName = strings.Trim(img, `"`)
	}
	if ppageno, ok := props["ppageno"]; ok {
		if v, err := strconv.Atoi(ppageno); err == nil {
			page.PageNumber = v + 1
		}
	}
	eachElement(n, func(c *html.Node) bool {
		if class(c) == "ocr_carea" {
			page.Areas = append(page.Areas, parseArea(c))
			return false
		}
		return true
	})
	return page
}

func parseArea(n *html.Node) Area {
	area := Area{
		ID:   attr(n, "id"),
		BBox: parseBBox(titleProps(n)["bbox"]),
	}
	eachElement(n, func(c *html.Node) bool {
		if class(c) == "ocr_par" {
			area.Paragraphs = append(area.Paragraphs, parseParagraph(c))
			return false
		}
		return true
	})
	return area
}

func parseParagraph(n *html.Node) Paragraph {
	par := Paragraph{
		ID:   attr(n, "id"),
		Lang: attr(n, "lang"),
		BBox: parseBBox(titleProps(n)["bbox"]),
	}
	eachElement(n, func(c *html.Node) bool {
		switch class(c) {
		case "ocr_line", "ocr_header", "ocr_caption", "ocr_textfloat":
			par.Lines = append(par.Lines, parseLine(c))
			return false
		}
		return true
	})
	return par
}

func parseLine(n *html.Node) Line {
	props := titleProps(n)
	line := Line{
		ID:       attr(n, "id"),
		BBox:     parseBBox(props["bbox"]),
		Baseline: props["baseline"],
	}
	eachElement(n, func(c *html.Node) bool {
		if class(c) == "ocrx_word" {
			line.Words = append(line.Words, parseWord(c))
			return false
		}
		return true
	})
	return line
}

func parseWord(n *html.Node) Word {
	props := titleProps(n)
	word := Word{
		ID:   attr(n, "id"),
		Text: strings.TrimSpace(text(n)),
		BBox: parseBBox(props["bbox"]),
	}
	if wconf, ok := props["x_wconf"]; ok {
		word.Confidence, _ = strconv.ParseFloat(wconf, 64)
	}
	return word
}

// eachElement calls fn for every element below n; fn returning false stops
// the descent into that element.
func eachElement(n *html.Node, fn func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if fn(c) {
			eachElement(c, fn)
		}
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func class(n *html.Node) string {
	return attr(n, "class")
}

func text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(text(c))
	}
	return sb.String()
}

// titleProps decodes the semicolon-separated property list of an hOCR
// title attribute, e.g. `bbox 36 92 619 144; x_wconf 95`.
func titleProps(n *html.Node) map[string]string {
	props := make(map[string]string)
	for _, part := range strings.Split(attr(n, "title"), ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, " ")
		props[key] = strings.TrimSpace(value)
	}
	return props
}

func parseBBox(s string) BBox {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return BBox{}
	}
	nums := make([]int, 4)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return BBox{}
		}
		nums[i] = n
	}
	return BBox{X1: nums[0], Y1: nums[1], X2: nums[2], Y2: nums[3]}
}
