package ocr

import (
	"bytes"
	"context"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/ocrkit/tesseract-service/pkg/tesseract"
)

func jsonMarshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (s *Service) RegisterNatsService(nc *nats.Conn) {
	ocrService, err := micro.AddService(nc, micro.Config{
		Name:        "ocr-service",
		Version:     "1.0.0",
		Description: "Runs Tesseract OCR on images and image-only PDFs",
	})

	if err != nil {
		panic(err)
	}
	ocrService.AddEndpoint("ocr",
		micro.HandlerFunc(s.handleOcrRequest),
		micro.WithEndpointQueueGroup("ocr-service"))
	ocrService.AddEndpoint("languages",
		micro.HandlerFunc(s.handleLanguagesRequest),
		micro.WithEndpointQueueGroup("ocr-service"))
}

// handleOcrRequest replies to a NATS request. The message payload is the
// image or PDF; OCR settings travel in the message headers.
func (s *Service) handleOcrRequest(req micro.Request) {
	data := req.Data()
	params := paramsFromHeaders(req.Headers())
	s.log.Info("Received Nats request", "size", len(data), "params", params)
	payload, err := s.store.FromReader(bytes.NewReader(data), int64(len(data)), "NATS request")
	if err != nil {
		req.Error("invalid_input", err.Error(), nil)
		return
	}
	body, contentType, metadata, err := s.Process(context.Background(), payload, params)
	s.postprocessChan <- postprocessJob{payload: payload}
	if err != nil {
		req.Error("failed", err.Error(), nil)
		return
	}
	headers := map[string][]string{"Content-Type": {contentType}}
	for k, v := range metadata {
		headers[k] = []string{v}
	}
	req.Respond(body, micro.WithHeaders(micro.Headers(headers)))
}

// handleLanguagesRequest responds with the installed traineddata languages
// as a JSON array.
func (s *Service) handleLanguagesRequest(req micro.Request) {
	langs, err := tesseract.GetLanguages(context.Background())
	if err != nil {
		req.Error("failed", err.Error(), nil)
		return
	}
	body, err := json.Marshal(langs)
	if err != nil {
		req.Error("failed", err.Error(), nil)
		return
	}
	req.Respond(body)
}

func paramsFromHeaders(h micro.Headers) RequestParams {
	params := RequestParams{
		Format: h.Get("format"),
		Lang:   h.Get("lang"),
	}
	if h.Get("parsed") == "true" {
		params.Parsed = true
	}
	if h.Get("noCache") == "true" {
		params.NoCache = true
	}
	return params
}
