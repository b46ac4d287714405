package tesseract

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// Box is a single character bounding box as produced by the `makebox`
// configfile. Coordinates use the Tesseract convention with the origin in
// the bottom left corner of the image.
type Box struct {
	Symbol string `json:"symbol"`
	Left   int    `json:"left"`
	Bottom int    `json:"bottom"`
	Right  int    `json:"right"`
	Top    int    `json:"top"`
	Page   int    `json:"page"`
}

// Data is one row of Tesseract's TSV output: box position, confidence,
// and line/page numbers for a layout element.
type Data struct {
	Level     int     `json:"level"`
	PageNum   int     `json:"page_num"`
	BlockNum  int     `json:"block_num"`
	ParNum    int     `json:"par_num"`
	LineNum   int     `json:"line_num"`
	WordNum   int     `json:"word_num"`
	Left      int     `json:"left"`
	Top       int     `json:"top"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Conf      float64 `json:"conf"`
	Text      string  `json:"text"`
}

// OSD holds the orientation and script detection result (--psm 0).
type OSD struct {
	PageNumber            int     `json:"page_number"`
	Orientation           int     `json:"orientation_degrees"`
	Rotate                int     `json:"rotate"`
	OrientationConfidence float64 `json:"orientation_confidence"`
	Script                string  `json:"script"`
	ScriptConfidence      float64 `json:"script_confidence"`
}

// Param is one Tesseract control parameter with its default value and a
// short description, as listed by --print-parameters.
type Param struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Regex patterns ported from the upstream CLI output conventions.
// Script confidence is reported on stdout with --psm 0,
// the deskew angle on stderr with --psm 2.
var (
	scriptConfidenceRe = regexp2.MustCompile(`Script.confidence:.(\d{1,10}.\d{1,10})$`, regexp2.Multiline)
	deskewAngleRe      = regexp2.MustCompile(`Deskew.angle:.(\d{1,10}.\d{1,10})$`, regexp2.Multiline)
	paramLineRe        = regexp2.MustCompile(`^(\w+)\s+(-?\d+.?\d{0,})\s+(.*[^\s])\s*$`, regexp2.None)
)

func decodeBoxes(data string) []Box {
	var boxes []Box
	for _, line := range strings.Split(data, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 6 {
			continue
		}
		nums := make([]int, 5)
		ok := true
		for i := range nums {
			n, err := strconv.Atoi(fields[i+1])
			if err != nil {
				ok = false
				break
			}
			nums[i] = n
		}
		if !ok {
			continue
		}
		boxes = append(boxes, Box{
			Symbol: fields[0],
			Left:   nums[0],
			Bottom: nums[1],
			Right:  nums[2],
			Top:    nums[3],
			Page:   nums[4],
		})
	}
	return boxes
}

func decodeData(data string) []Data {
	lines := strings.Split(data, "\n")
	var rows []Data
	// first line is the column header
	for _, line := range lines[min(1, len(lines)):] {
		cols := strings.Split(line, "\t")
		if len(cols) < 11 {
			continue
		}
		nums := make([]int, 10)
		ok := true
		for i := range nums {
			n, err := strconv.Atoi(cols[i])
			if err != nil {
				ok = false
				break
			}
			nums[i] = n
		}
		if !ok {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil {
			continue
		}
		row := Data{
			Level:    nums[0],
			PageNum:  nums[1],
			BlockNum: nums[2],
			ParNum:   nums[3],
			LineNum:  nums[4],
			WordNum:  nums[5],
			Left:     nums[6],
			Top:      nums[7],
			Width:    nums[8],
			Height:   nums[9],
			Conf:     conf,
		}
		if len(cols) > 11 {
			row.Text = cols[11]
		}
		rows = append(rows, row)
	}
	return rows
}

func decodeOSD(data string) OSD {
	var osd OSD
	for _, line := range strings.Split(data, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Page number":
			osd.PageNumber, _ = strconv.Atoi(value)
		case "Orientation in degrees":
			osd.Orientation, _ = strconv.Atoi(value)
		case "Rotate":
			osd.Rotate, _ = strconv.Atoi(value)
		case "Orientation confidence":
			osd.OrientationConfidence, _ = strconv.ParseFloat(value, 64)
		case "Script":
			osd.Script = value
		case "Script confidence":
			osd.ScriptConfidence, _ = strconv.ParseFloat(value, 64)
		}
	}
	return osd
}

func decodeParams(data string) []Param {
	var params []Param
	for _, line := range strings.Split(data, "\n") {
		m, err := paramLineRe.FindStringMatch(line)
		if err != nil || m == nil {
			continue
		}
		groups := m.Groups()
		params = append(params, Param{
			Name:        groups[1].String(),
			Value:       groups[2].String(),
			Description: strings.TrimSpace(groups[3].String()),
		})
	}
	return params
}

// matchFloat extracts the first capture of re in data as a float.
// Returns 0 when the pattern does not occur, as the absence of the
// diagnostic simply means the engine did not compute the value.
func matchFloat(re *regexp2.Regexp, data string) float64 {
	m, err := re.FindStringMatch(data)
	if err != nil || m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(m.Groups()[1].String(), 64)
	if err != nil {
		return 0
	}
	return f
}
