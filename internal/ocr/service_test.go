package ocr

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ocrkit/tesseract-service/internal/config"
	"github.com/ocrkit/tesseract-service/internal/input"
	"github.com/ocrkit/tesseract-service/pkg/tesseract"
)

func newTestService() *Service {
	gin.SetMode(gin.TestMode)
	cfg := &config.OcrConfig{
		Languages:        "eng",
		DPI:              300,
		PSM:              3,
		OEM:              3,
		Timeout:          30 * time.Second,
		MaxProcs:         2,
		MaxInMemoryBytes: 8 << 20,
		MaxFileSizeBytes: 64 << 20,
		FoldNewlines:     true,
	}
	return New(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postImage(t *testing.T, router *gin.Engine, query string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/"+query, bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRejectsUnknownFormat(t *testing.T) {
	router := newTestService().Router()
	w := postImage(t, router, "?format=docx", []byte("irrelevant"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRejectsOutOfRangeParams(t *testing.T) {
	router := newTestService().Router()
	for _, query := range []string{"?dpi=10", "?dpi=9000", "?psm=99", "?oem=7", "?lang=klingon"} {
		w := postImage(t, router, query, []byte("irrelevant"))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", query, w.Code)
		}
	}
}

func TestRejectsEmptyBody(t *testing.T) {
	router := newTestService().Router()
	w := postImage(t, router, "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRejectsUnsupportedContentType(t *testing.T) {
	router := newTestService().Router()
	w := postImage(t, router, "", []byte("just some plain text, not an image"))
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPDFInputOnlySupportsText(t *testing.T) {
	router := newTestService().Router()
	pdf := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte{' '}, 64)...)
	w := postImage(t, router, "?format=boxes", pdf)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHealthReflectsInstallation(t *testing.T) {
	router := newTestService().Router()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	want := http.StatusOK
	if !tesseract.Installed() {
		want = http.StatusServiceUnavailable
	}
	if w.Code != want {
		t.Errorf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func TestHttpStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{input.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{input.ErrZeroSize, http.StatusBadRequest},
		{errUnsupportedPayload, http.StatusUnsupportedMediaType},
		{errPDFPlainTextOnly, http.StatusUnprocessableEntity},
		{tesseract.ErrTimeout, http.StatusGatewayTimeout},
		{tesseract.ErrNotInstalled, http.StatusServiceUnavailable},
		{&tesseract.RunError{ExitCode: 1, Stderr: "boom"}, http.StatusUnprocessableEntity},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := httpStatus(tc.err); got != tc.want {
			t.Errorf("httpStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	s := newTestService()
	psm, oem := 6, 1
	o := tesseract.NewOptions(s.options(RequestParams{Lang: "deu", DPI: 150, PSM: &psm, OEM: &oem})...)
	if o.Lang != "deu" || o.DPI != 150 || o.PSM != 6 || o.OEM != 1 {
		t.Errorf("unexpected options: %+v", o)
	}
	o = tesseract.NewOptions(s.options(RequestParams{})...)
	if o.Lang != "eng" || o.DPI != 300 || o.PSM != 3 || o.OEM != 3 {
		t.Errorf("unexpected defaults: %+v", o)
	}
}

func readServiceTestImage(t *testing.T) []byte {
	t.Helper()
	if !tesseract.Installed() {
		t.Skip("tesseract binary not installed")
	}
	data, err := os.ReadFile("../../pkg/tesseract/testdata/readme.png")
	if err != nil {
		t.Skipf("test image not available: %v", err)
	}
	return data
}

func TestOcrEndToEnd(t *testing.T) {
	img := readServiceTestImage(t)
	router := newTestService().Router()
	w := postImage(t, router, "", img)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("expected recognized text in response body")
	}
}

func TestOcrTSVEndToEnd(t *testing.T) {
	img := readServiceTestImage(t)
	router := newTestService().Router()
	w := postImage(t, router, "?format=tsv", img)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("unexpected content type %q", ct)
	}
}
