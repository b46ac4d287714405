//go:build tesseract_wasm

package tesseract

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/danlock/gogosseract"
)

var wasmTess *gogosseract.Tesseract

// TrainingDataPath locates the traineddata file loaded into the WASM
// engine at startup.
var TrainingDataPath = "/usr/share/tesseract-ocr/5/tessdata/eng.traineddata"

func init() {
	trainingData, err := os.Open(TrainingDataPath)
	if err != nil {
		Initialized = false
		return
	}
	defer trainingData.Close()
	cfg := gogosseract.Config{
		Language:     Languages,
		TrainingData: trainingData,
	}
	cfg.Stderr = io.Discard
	cfg.Stdout = io.Discard
	wasmTess, err = gogosseract.New(context.Background(), cfg)
	if err != nil {
		Initialized = false
		return
	}
	Initialized = true
}

// ImageToTextNative extracts the plain text of an image with the
// WASM-compiled Tesseract engine instead of the CLI.
func ImageToTextNative(imgBytes []byte) (string, error) {
	ctx := context.Background()
	if err := wasmTess.LoadImage(ctx, bytes.NewReader(imgBytes), gogosseract.LoadImageOptions{}); err != nil {
		return "", err
	}
	return wasmTess.GetText(ctx, nil)
}
