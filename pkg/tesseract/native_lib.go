//go:build tesseract_lib

package tesseract

import (
	"errors"

	tess "github.com/raff/go-tesseract"
)

func init() {
	Initialized = true
}

// ImageToTextNative extracts the plain text of an image with the
// go-tesseract CGO binding instead of the CLI.
func ImageToTextNative(imgBytes []byte) (string, error) {
	api := tess.BaseAPICreate()
	defer api.Clear()

	if ret := api.Init3("", Languages); ret != 0 {
		return "", errors.New("could not init tesseract")
	}
	api.SetDebugVariable("debug_file", "/dev/null")
	api.SetPageSegMode(tess.PSM_AUTO_OSD)
	api.SetImageBytes(imgBytes)
	return api.GetUTF8Text(), nil
}

// NativeVersion returns the libtesseract version.
func NativeVersion() string {
	return tess.Version()
}
