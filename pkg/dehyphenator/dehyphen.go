/*
Package dehyphenator cleans up OCR plain text output.

Recognized text keeps the line breaks of the source image, so words are
often split with a hyphen at the end of a line. This package joins such
words again while preserving hyphens that are part of a compound (a line
ending in an uppercase rune before the hyphen, or a following line starting
uppercase, keeps its hyphen). It can also fold all newlines into spaces,
which helps when the text is fed to a search index.

All output is NFC-normalized.
*/
package dehyphenator

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Dehyphenate reads text from in and writes the cleaned text to out.
// With foldNewlines set, newlines are replaced by single spaces.
func Dehyphenate(in io.Reader, out io.Writer, foldNewlines bool) error {
	w := bufio.NewWriter(norm.NFC.Writer(out))
	s := bufio.NewScanner(in)
	pendingHyphen := false
	for s.Scan() {
		line := strings.ReplaceAll(s.Text(), "￾", "")
		trimmed := []rune(strings.TrimSpace(line))
		if len(trimmed) == 0 || isHyphen(trimmed[0]) {
			// skip empty and hyphen-only lines
			if !foldNewlines {
				if _, err := w.WriteRune('\n'); err != nil {
					return err
				}
			}
			continue
		}
		if pendingHyphen && unicode.IsUpper(trimmed[0]) {
			// the removed hyphen joined two compound parts; put it back
			if _, err := w.WriteRune('-'); err != nil {
				return err
			}
		}
		pendingHyphen = false
		last := trimmed[len(trimmed)-1]
		if isHyphen(last) && len(trimmed) > 1 && !unicode.IsUpper(trimmed[len(trimmed)-2]) {
			// soft line break candidate: drop the hyphen and remember it
			pendingHyphen = true
			if _, err := w.WriteString(string(trimmed[:len(trimmed)-1])); err != nil {
				return err
			}
			continue
		}
		if _, err := w.WriteString(string(trimmed)); err != nil {
			return err
		}
		sep := '\n'
		if foldNewlines {
			sep = ' '
		}
		if _, err := w.WriteRune(sep); err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	return w.Flush()
}

// String dehyphenates a string, keeping newlines.
func String(in string) (string, error) {
	var buf bytes.Buffer
	err := Dehyphenate(strings.NewReader(in), &buf, false)
	return buf.String(), err
}

func isHyphen(r rune) bool {
	return unicode.Is(unicode.Hyphen, r)
}
