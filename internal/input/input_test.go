package input

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

// minimal valid PNG header followed by padding, enough for sniffing
var pngData = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)

func TestSmallPayloadStaysInMemory(t *testing.T) {
	s := NewStore(1024, 10_000, nil)
	p, err := s.FromReader(bytes.NewReader(pngData), int64(len(pngData)), "test")
	if err != nil {
		t.Fatal(err)
	}
	if p.Path() != "" {
		t.Errorf("want in-memory payload, got temp file %s", p.Path())
	}
	if p.Kind() != KindImage {
		t.Errorf("want image kind, got %v (%s)", p.Kind(), p.ContentType())
	}
	if p.Size() != int64(len(pngData)) {
		t.Errorf("want size %d, got %d", len(pngData), p.Size())
	}
}

func TestUnknownSizeSpillsToDisk(t *testing.T) {
	s := NewStore(16, 10_000, nil)
	p, err := s.FromReader(bytes.NewReader(pngData), -1, "test")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Path()) == 0 {
		t.Fatal("want payload spilled to a temp file")
	}
	defer p.Cleanup(nil)
	data, err := p.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, pngData) {
		t.Error("spilled payload corrupted")
	}
	p.Cleanup(nil)
	if _, err := os.Stat(p.Path()); !os.IsNotExist(err) {
		t.Error("Cleanup did not remove the temp file")
	}
}

func TestUnknownSizeSmallStreamStaysInMemory(t *testing.T) {
	s := NewStore(1024, 10_000, nil)
	p, err := s.FromReader(bytes.NewReader(pngData), -1, "test")
	if err != nil {
		t.Fatal(err)
	}
	if p.Path() != "" {
		t.Errorf("want in-memory payload, got %s", p.Path())
	}
}

func TestZeroSizeRejected(t *testing.T) {
	s := NewStore(1024, 10_000, nil)
	if _, err := s.FromReader(strings.NewReader(""), 0, "test"); !errors.Is(err, ErrZeroSize) {
		t.Errorf("want ErrZeroSize, got %v", err)
	}
	if _, err := s.FromReader(strings.NewReader(""), -1, "test"); !errors.Is(err, ErrZeroSize) {
		t.Errorf("want ErrZeroSize for empty unknown-size stream, got %v", err)
	}
}

func TestAnnouncedSizeAboveLimitRejected(t *testing.T) {
	s := NewStore(16, 64, nil)
	if _, err := s.FromReader(bytes.NewReader(pngData), 100_000, "test"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("want ErrTooLarge, got %v", err)
	}
}

func TestStreamedPayloadAboveLimitRejected(t *testing.T) {
	s := NewStore(8, 32, nil)
	_, err := s.FromReader(bytes.NewReader(pngData), -1, "test")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("want ErrTooLarge, got %v", err)
	}
}

func TestPDFSniffed(t *testing.T) {
	s := NewStore(1024, 10_000, nil)
	pdf := []byte("%PDF-1.7\n%some pdf content here")
	p, err := s.FromReader(bytes.NewReader(pdf), int64(len(pdf)), "test")
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind() != KindPDF {
		t.Errorf("want pdf kind, got %v (%s)", p.Kind(), p.ContentType())
	}
}

func TestGarbageUnsupported(t *testing.T) {
	s := NewStore(1024, 10_000, nil)
	p, err := s.FromReader(strings.NewReader("hello world, no image here"), 26, "test")
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind() != KindUnsupported {
		t.Errorf("want unsupported kind, got %v (%s)", p.Kind(), p.ContentType())
	}
}

func TestFromPathNotOwned(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "img-*.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(pngData); err != nil {
		t.Fatal(err)
	}
	f.Close()
	s := NewStore(1024, 10_000, nil)
	p, err := s.FromPath(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	p.Cleanup(nil)
	if _, err := os.Stat(f.Name()); err != nil {
		t.Error("Cleanup removed a file it does not own")
	}
}
