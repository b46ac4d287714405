/*
Package tesseract wraps the Tesseract OCR v5 command line tool.
It launches the binary as a subprocess per operation and decodes its
textual output into structured data (plain text, hOCR, TSV word data,
character boxes, orientation/script detection, control parameters).

The CLI is the default backend. In-process bindings can be selected with
build tags (gosseract, tesseract_lib, tesseract_wasm).
*/
package tesseract

import (
	"bytes"
	"errors"
	"io"
	"os"
)

var (
	// Initialized indicates whether a usable Tesseract backend was found.
	Initialized bool = true
	// Languages is the default set of languages passed to Tesseract,
	// separated by `+` (e.g. "eng" or "deu+eng").
	Languages string = "eng"
)

// Input is an image handed to Tesseract, either as a filesystem path or
// as raw data fed to the subprocess on stdin.
type Input struct {
	path string
	r    io.Reader
}

// FromPath returns an Input referring to an image file on disk.
func FromPath(path string) Input {
	return Input{path: path}
}

// FromBytes returns an Input holding raw image data.
func FromBytes(data []byte) Input {
	return Input{r: bytes.NewReader(data)}
}

// FromReader returns an Input streaming image data from r.
func FromReader(r io.Reader) Input {
	return Input{r: r}
}

// Path returns the filesystem path of the input, or an empty string for
// in-memory inputs.
func (in Input) Path() string {
	return in.path
}

func (in Input) validate() error {
	if len(in.path) > 0 {
		if _, err := os.Stat(in.path); err != nil {
			return err
		}
		return nil
	}
	if in.r == nil {
		return errors.New("input has neither a path nor data")
	}
	return nil
}
