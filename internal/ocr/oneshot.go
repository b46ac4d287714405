package ocr

import (
	"context"
	"os"

	json "github.com/goccy/go-json"

	"github.com/ocrkit/tesseract-service/internal/input"
)

// PrintMetadataAndTextToStdout prints a file's metadata (as JSON) on the
// first line, followed by the recognized text. When path is "-", the image
// will be read from Stdin.
func (s *Service) PrintMetadataAndTextToStdout(path string) {
	var payload *input.Payload
	var err error
	if path == "-" {
		payload, err = s.store.FromReader(os.Stdin, -1, path)
	} else {
		payload, err = s.store.FromPath(path)
	}
	if err != nil {
		s.log.Error("Could not read input", "path", path, "err", err)
		os.Exit(2)
	}
	body, _, metadata, err := s.Process(context.Background(), payload, RequestParams{NoCache: true})
	s.postprocessChan <- postprocessJob{payload: payload}
	if err != nil {
		s.log.Error("OCR failed", "path", path, "err", err)
		os.Exit(1)
	}
	metaJson, err := json.Marshal(metadata)
	if err != nil {
		s.log.Error("Could not marshal metadata", "err", err)
		os.Exit(1)
	}
	os.Stdout.Write(metaJson)
	os.Stdout.Write([]byte{'\n'})
	os.Stdout.Write(body)
}
