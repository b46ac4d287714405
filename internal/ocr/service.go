// Package ocr is the service layer: it exposes the Tesseract wrapper over
// HTTP and NATS, caches results and bounds subprocess concurrency.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/expvar"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	sloggin "github.com/samber/slog-gin"
	"golang.org/x/sync/semaphore"

	"github.com/ocrkit/tesseract-service/internal/cache"
	"github.com/ocrkit/tesseract-service/internal/config"
	"github.com/ocrkit/tesseract-service/internal/input"
	"github.com/ocrkit/tesseract-service/internal/pdfproc"
	"github.com/ocrkit/tesseract-service/pkg/dehyphenator"
	"github.com/ocrkit/tesseract-service/pkg/hocr"
	"github.com/ocrkit/tesseract-service/pkg/tesseract"
)

var (
	errUnsupportedPayload = errors.New("unsupported content type")
	errPDFPlainTextOnly   = errors.New("PDF input only supports plain text extraction")
)

// RequestParams are the OCR settings a client may pass per request.
type RequestParams struct {
	Format string `form:"format" json:"format" binding:"omitempty,oneof=text tsv hocr pdf boxes osd"`
	Lang   string `form:"lang" json:"lang" binding:"omitempty,tesslang"`
	DPI    int    `form:"dpi" json:"dpi" binding:"omitempty,gte=70,lte=2400"`
	PSM    *int   `form:"psm" json:"psm" binding:"omitempty,gte=0,lte=13"`
	OEM    *int   `form:"oem" json:"oem" binding:"omitempty,gte=0,lte=3"`
	// Parsed returns hOCR decoded to JSON instead of raw XHTML
	Parsed bool `form:"parsed" json:"parsed"`
	// NoCache ignores cached results
	NoCache bool `form:"noCache" json:"noCache"`
	// Silent sends metadata only, ignoring content
	Silent bool `form:"silent" json:"silent"`
}

type postprocessJob struct {
	res     cache.Result
	payload *input.Payload
}

// Service ties the wrapper, input buffering, cache and transports together.
type Service struct {
	cfg             *config.OcrConfig
	resultCache     cache.Cache
	cacheNop        bool
	log             *slog.Logger
	store           *input.Store
	sem             *semaphore.Weighted
	postprocessChan chan postprocessJob
}

func New(cfg *config.OcrConfig, resultCache cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if resultCache == nil {
		resultCache = &cache.NopCache{}
	}
	s := &Service{
		cfg:             cfg,
		resultCache:     resultCache,
		log:             logger,
		store:           input.NewStore(cfg.MaxInMemoryBytes, cfg.MaxFileSizeBytes, logger),
		sem:             semaphore.NewWeighted(cfg.MaxProcs),
		postprocessChan: make(chan postprocessJob, 100),
	}
	_, s.cacheNop = resultCache.(*cache.NopCache)
	go s.saveAndCleanup()
	return s
}

// saveAndCleanup removes temp files and persists finished results.
// It runs on its own goroutine so responses are not delayed by the cache.
func (s *Service) saveAndCleanup() {
	for job := range s.postprocessChan {
		job.payload.Cleanup(s.log)
		if s.cacheNop || len(job.res.Text) == 0 {
			continue
		}
		for i := 0; i <= 5; i++ {
			info, err := s.resultCache.Save(job.res)
			if err == nil {
				s.log.Info("Saved OCR result in object store bucket", "key", job.res.Key, "chunks", info.Chunks, "size", info.Size)
				break
			}
			s.log.Warn("Could not save result to cache", "retries", i, "key", job.res.Key, "err", err)
		}
	}
}

// Router builds the gin engine with all HTTP endpoints.
func (s *Service) Router() *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("tesslang", func(fl validator.FieldLevel) bool {
			ok, _ := tesseract.ValidateLanguages(fl.Field().String())
			return ok
		})
	}
	router := gin.New()
	router.Use(sloggin.New(s.log), gin.Recovery())
	router.POST("/", s.HandleOCR)
	router.GET("/languages", s.HandleLanguages)
	router.GET("/parameters", s.HandleParameters)
	router.GET("/version", s.HandleVersion)
	router.GET("/health", s.HandleHealth)
	router.GET("/debug/vars", expvar.Handler())
	return router
}

// options converts request params to wrapper options, falling back to the
// service defaults.
func (s *Service) options(params RequestParams) []tesseract.Option {
	opts := []tesseract.Option{
		tesseract.WithLang(s.cfg.Languages),
		tesseract.WithDPI(s.cfg.DPI),
		tesseract.WithPSM(s.cfg.PSM),
		tesseract.WithOEM(s.cfg.OEM),
		tesseract.WithTimeout(s.cfg.Timeout),
	}
	if params.Lang != "" {
		opts = append(opts, tesseract.WithLang(params.Lang))
	}
	if params.DPI > 0 {
		opts = append(opts, tesseract.WithDPI(params.DPI))
	}
	if params.PSM != nil {
		opts = append(opts, tesseract.WithPSM(*params.PSM))
	}
	if params.OEM != nil {
		opts = append(opts, tesseract.WithOEM(*params.OEM))
	}
	return opts
}

// HandleOCR runs OCR on the request body and responds in the requested
// format. Decoded formats (tsv, boxes, osd, parsed hocr) are JSON.
func (s *Service) HandleOCR(c *gin.Context) {
	var params RequestParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload, err := s.store.FromReader(c.Request.Body, c.Request.ContentLength, "POST request")
	if err != nil {
		c.AbortWithStatusJSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}

	if params.Format == "" || params.Format == "text" {
		if s.serveCached(c, payload, params) {
			s.postprocessChan <- postprocessJob{payload: payload}
			return
		}
	}

	body, contentType, metadata, err := s.Process(c.Request.Context(), payload, params)
	if err != nil {
		s.log.Error("OCR failed", "err", err, "format", params.Format)
		s.postprocessChan <- postprocessJob{payload: payload}
		c.AbortWithStatusJSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}
	for k, v := range metadata {
		c.Header(k, v)
	}
	job := postprocessJob{payload: payload}
	if params.Format == "" || params.Format == "text" {
		if key, err := s.cacheKey(payload, params); err == nil {
			job.res = cache.Result{Key: key, Metadata: metadata, Text: body}
		}
	}
	s.postprocessChan <- job
	if params.Silent {
		c.Status(http.StatusOK)
		return
	}
	c.Data(http.StatusOK, contentType, body)
}

// serveCached streams a cached text result if there is one. Returns true
// when the response has been written.
func (s *Service) serveCached(c *gin.Context, payload *input.Payload, params RequestParams) bool {
	if params.NoCache || s.cacheNop {
		return false
	}
	key, err := s.cacheKey(payload, params)
	if err != nil {
		return false
	}
	metadata, err := s.resultCache.GetMetadata(key)
	if err != nil {
		s.log.Error("Could not get metadata from object store", "key", key, "err", err)
		return false
	}
	if metadata == nil {
		return false
	}
	for k, v := range metadata {
		c.Header(k, v)
	}
	c.Header("X-Cache", "hit")
	if params.Silent {
		c.Status(http.StatusOK)
		return true
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.resultCache.StreamText(key, c.Writer); err != nil {
		// headers are already sent, nothing left to do but log
		s.log.Error("Could not stream text from object store", "key", key, "err", err)
	}
	return true
}

func (s *Service) cacheKey(payload *input.Payload, params RequestParams) (string, error) {
	data, err := payload.Bytes()
	if err != nil {
		return "", err
	}
	o := tesseract.NewOptions(s.options(params)...)
	return cache.Key(data, o.Fingerprint()), nil
}

// Process runs one OCR operation on a buffered payload. It returns the
// response body, its content type and result metadata. The caller owns the
// payload; Process never cleans it up.
func (s *Service) Process(ctx context.Context, payload *input.Payload, params RequestParams) (body []byte, contentType string, metadata map[string]string, err error) {
	kind := payload.Kind()
	if kind == input.KindUnsupported {
		return nil, "", nil, fmt.Errorf("%w: %s", errUnsupportedPayload, payload.ContentType())
	}
	format := params.Format
	if format == "" {
		format = "text"
	}
	if kind == input.KindPDF && format != "text" {
		return nil, "", nil, errPDFPlainTextOnly
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, "", nil, err
	}
	defer s.sem.Release(1)

	opts := s.options(params)
	metadata = map[string]string{
		"X-Content-Type": payload.ContentType(),
		"X-Ocr-Langs":    tesseract.NewOptions(opts...).Lang,
	}

	if kind == input.KindPDF {
		text, pdfMeta, err := s.ocrPDF(ctx, payload, opts)
		if err != nil {
			return nil, "", nil, err
		}
		for k, v := range pdfMeta {
			metadata[k] = v
		}
		return text, "text/plain; charset=utf-8", metadata, nil
	}

	in, err := payloadInput(payload)
	if err != nil {
		return nil, "", nil, err
	}
	switch format {
	case "text":
		text, err := tesseract.ImageToText(ctx, in, opts...)
		if err != nil {
			return nil, "", nil, err
		}
		var buf bytes.Buffer
		if err := dehyphenator.Dehyphenate(strings.NewReader(text), &buf, s.cfg.FoldNewlines); err != nil {
			// postprocessing must never lose the recognized text
			s.log.Warn("Dehyphenator failed", "err", err)
			buf.Reset()
			buf.WriteString(text)
		}
		return buf.Bytes(), "text/plain; charset=utf-8", metadata, nil
	case "tsv":
		rows, err := tesseract.ImageToData(ctx, in, opts...)
		if err != nil {
			return nil, "", nil, err
		}
		return marshalJSON(rows, metadata)
	case "boxes":
		boxes, err := tesseract.ImageToBoxes(ctx, in, opts...)
		if err != nil {
			return nil, "", nil, err
		}
		return marshalJSON(boxes, metadata)
	case "osd":
		osd, err := tesseract.ImageToOSD(ctx, in, opts...)
		if err != nil {
			return nil, "", nil, err
		}
		return marshalJSON(osd, metadata)
	case "hocr":
		raw, err := tesseract.ImageToHOCR(ctx, in, opts...)
		if err != nil {
			return nil, "", nil, err
		}
		if params.Parsed {
			doc, err := hocr.ParseString(raw)
			if err != nil {
				return nil, "", nil, fmt.Errorf("decoding hOCR output: %w", err)
			}
			return marshalJSON(doc, metadata)
		}
		return []byte(raw), "application/xhtml+xml; charset=utf-8", metadata, nil
	case "pdf":
		pdf, err := tesseract.ImageToPDF(ctx, in, opts...)
		if err != nil {
			return nil, "", nil, err
		}
		return pdf, "application/pdf", metadata, nil
	}
	return nil, "", nil, fmt.Errorf("unknown format %q", format)
}

// ocrPDF extracts the embedded images of every PDF page and OCRs them.
func (s *Service) ocrPDF(ctx context.Context, payload *input.Payload, opts []tesseract.Option) ([]byte, map[string]string, error) {
	data, err := payload.Bytes()
	if err != nil {
		return nil, nil, err
	}
	rs := bytes.NewReader(data)
	pdfMeta, err := pdfproc.GetMetadata(rs)
	if err != nil {
		return nil, nil, err
	}
	var sb strings.Builder
	for i := 0; i < pdfMeta.PageCount; i++ {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, nil, err
		}
		err := pdfproc.ExtractImages(rs, i, func(img model.Image) {
			s.log.Info("Image found. Starting OCR", "page", i, "type", img.FileType, "name", img.Name)
			text, err := tesseract.ImageToText(ctx, tesseract.FromReader(img), opts...)
			if err != nil {
				// keep going; a broken image must not abort the document
				s.log.Error("Tesseract failed", "err", err, "page", i, "imgName", img.Name)
				return
			}
			sb.WriteString(text)
		})
		if err != nil {
			s.log.Error("Extracting images failed", "err", err, "page", i)
			continue
		}
		// ensure there is a newline at the end of every page
		sb.WriteByte('\n')
	}
	metadata := map[string]string{
		"X-Pdf-Pages": fmt.Sprintf("%d", pdfMeta.PageCount),
	}
	if pdfMeta.Author != "" {
		metadata["X-Pdf-Author"] = pdfMeta.Author
	}
	if pdfMeta.Title != "" {
		metadata["X-Pdf-Title"] = pdfMeta.Title
	}
	var buf bytes.Buffer
	if err := dehyphenator.Dehyphenate(strings.NewReader(sb.String()), &buf, s.cfg.FoldNewlines); err != nil {
		s.log.Warn("Dehyphenator failed", "err", err)
		return []byte(sb.String()), metadata, nil
	}
	return buf.Bytes(), metadata, nil
}

func payloadInput(payload *input.Payload) (tesseract.Input, error) {
	if path := payload.Path(); path != "" {
		return tesseract.FromPath(path), nil
	}
	data, err := payload.Bytes()
	if err != nil {
		return tesseract.Input{}, err
	}
	return tesseract.FromBytes(data), nil
}

func marshalJSON(v any, metadata map[string]string) ([]byte, string, map[string]string, error) {
	body, err := jsonMarshal(v)
	if err != nil {
		return nil, "", nil, err
	}
	return body, "application/json; charset=utf-8", metadata, nil
}

// HandleLanguages lists the installed traineddata languages.
func (s *Service) HandleLanguages(c *gin.Context) {
	langs, err := tesseract.GetLanguages(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"languages": langs})
}

// HandleParameters lists all Tesseract control parameters.
func (s *Service) HandleParameters(c *gin.Context) {
	params, err := tesseract.Parameters(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"parameters": params})
}

// HandleVersion reports the version of the wrapped binary.
func (s *Service) HandleVersion(c *gin.Context) {
	version, err := tesseract.Version(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": version})
}

// HandleHealth reports whether the service can perform OCR: the binary
// must be present and the configured languages installed.
func (s *Service) HandleHealth(c *gin.Context) {
	if !tesseract.Installed() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": tesseract.ErrNotInstalled.Error()})
		return
	}
	if ok, reason := tesseract.ValidateLanguages(s.cfg.Languages); !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "misconfigured", "reason": reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "langs": s.cfg.Languages})
}

// httpStatus maps wrapper and input errors to response codes.
func httpStatus(err error) int {
	var runErr *tesseract.RunError
	switch {
	case errors.Is(err, input.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, input.ErrZeroSize):
		return http.StatusBadRequest
	case errors.Is(err, errUnsupportedPayload):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, errPDFPlainTextOnly):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tesseract.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, tesseract.ErrNotInstalled):
		return http.StatusServiceUnavailable
	case errors.As(err, &runErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
