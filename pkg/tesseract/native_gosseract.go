//go:build gosseract

package tesseract

import (
	"github.com/otiai10/gosseract/v2"
)

func init() {
	Initialized = true
}

// ImageToTextNative extracts the plain text of an image with the
// in-process libtesseract binding instead of the CLI.
func ImageToTextNative(imgBytes []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	client.SetPageSegMode(gosseract.PSM_AUTO_OSD)
	client.DisableOutput()
	client.SetLanguage(Languages)
	if err := client.SetImageFromBytes(imgBytes); err != nil {
		return "", err
	}
	client.Trim = true
	return client.Text()
}

// NativeVersion returns the libtesseract version.
func NativeVersion() string {
	return gosseract.Version()
}
