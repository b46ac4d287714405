// Package input buffers request payloads before OCR. Small payloads stay
// in memory, larger ones are spilled to a temporary file, and a hard size
// limit aborts processing early. The payload kind (image, PDF) is sniffed
// from the content, never taken from the client.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrZeroSize = errors.New("zero-length data can not be processed")
	ErrTooLarge = errors.New("payload too large")
)

// Kind is the sniffed payload category.
type Kind int

const (
	KindUnsupported Kind = iota
	KindImage
	KindPDF
)

// Payload is a buffered request body, either in memory or in a temp file.
type Payload struct {
	data []byte
	path string
	mime *mimetype.MIME
	// owned marks temp files created by the store, which Cleanup removes
	owned bool
}

// Store buffers payloads according to the configured size thresholds.
type Store struct {
	MaxInMemoryBytes uint64
	MaxFileSizeBytes uint64
	log              *slog.Logger
}

func NewStore(maxInMemory, maxFileSize uint64, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{MaxInMemoryBytes: maxInMemory, MaxFileSizeBytes: maxFileSize, log: log}
}

// FromReader drains r into a Payload. size is the announced content length,
// or a negative value when unknown (chunked encoding, stdin).
func (s *Store) FromReader(r io.Reader, size int64, origin string) (*Payload, error) {
	switch {
	case size == 0:
		return nil, ErrZeroSize
	case size > 0 && uint64(size) > s.MaxFileSizeBytes:
		return nil, fmt.Errorf("%w: %d bytes announced", ErrTooLarge, size)
	case size > 0 && uint64(size) <= s.MaxInMemoryBytes:
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		return newFromBytes(data)
	}
	return s.handleUnknownSize(r, origin)
}

// FromPath returns a Payload referring to an existing file. The file is
// not owned by the store and will not be removed by Cleanup.
func (s *Store) FromPath(path string) (*Payload, error) {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, err
	}
	return &Payload{path: path, mime: mime}, nil
}

func (s *Store) handleUnknownSize(r io.Reader, origin string) (*Payload, error) {
	buf := make([]byte, s.MaxInMemoryBytes)
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// the stream fit into the buffer
		if n == 0 {
			return nil, ErrZeroSize
		}
		return newFromBytes(buf[:n])
	}
	if err != nil {
		return nil, err
	}
	// buffer full and more to come: spill to disk
	f, err := os.CreateTemp("", "ocrs-payload-")
	if err != nil {
		return nil, fmt.Errorf("creating temp file for origin %s: %w", origin, err)
	}
	defer f.Close()
	s.log.Debug("Spilling payload to temporary file", "origin", origin, "path", f.Name())
	if _, err := f.Write(buf); err != nil {
		return nil, err
	}
	limit := int64(s.MaxFileSizeBytes) - int64(n)
	written, err := io.Copy(f, io.LimitReader(r, limit+1))
	if err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	if written > limit {
		os.Remove(f.Name())
		return nil, ErrTooLarge
	}
	mime, err := mimetype.DetectFile(f.Name())
	if err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	return &Payload{path: f.Name(), mime: mime, owned: true}, nil
}

func newFromBytes(data []byte) (*Payload, error) {
	return &Payload{data: data, mime: mimetype.Detect(data)}, nil
}

// Kind categorizes the sniffed content type.
func (p *Payload) Kind() Kind {
	switch {
	case p.mime == nil:
		return KindUnsupported
	case p.mime.Is("application/pdf"):
		return KindPDF
	case isImage(p.mime):
		return KindImage
	}
	return KindUnsupported
}

func isImage(m *mimetype.MIME) bool {
	for _, typ := range []string{
		"image/png", "image/jpeg", "image/tiff", "image/bmp",
		"image/gif", "image/webp", "image/x-portable-anymap",
	} {
		if m.Is(typ) {
			return true
		}
	}
	return false
}

// ContentType returns the sniffed MIME type string.
func (p *Payload) ContentType() string {
	if p.mime == nil {
		return "application/octet-stream"
	}
	return p.mime.String()
}

// Path returns the temp file path, or an empty string for in-memory
// payloads.
func (p *Payload) Path() string {
	return p.path
}

// Bytes returns the payload content, reading the temp file if necessary.
func (p *Payload) Bytes() ([]byte, error) {
	if p.data != nil {
		return p.data, nil
	}
	return os.ReadFile(p.path)
}

// Reader returns a fresh reader over the payload content.
func (p *Payload) Reader() (io.ReadCloser, error) {
	if p.data != nil {
		return io.NopCloser(bytes.NewReader(p.data)), nil
	}
	return os.Open(p.path)
}

// Size returns the payload length in bytes.
func (p *Payload) Size() int64 {
	if p.data != nil {
		return int64(len(p.data))
	}
	stat, err := os.Stat(p.path)
	if err != nil {
		return -1
	}
	return stat.Size()
}

// Cleanup removes the temp file backing the payload, if any.
func (p *Payload) Cleanup(log *slog.Logger) {
	if !p.owned || len(p.path) == 0 {
		return
	}
	if err := os.Remove(p.path); err != nil {
		if log != nil {
			log.Error("could not remove temporary file", "err", err)
		}
		return
	}
	if log != nil {
		log.Debug("temporary file removed", "path", p.path)
	}
}
