package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/nats-io/nats.go/jetstream"
)

// Result is one finished OCR run: the recognized text plus metadata such
// as the detected script, engine version and source content type.
type Result struct {
	// Key identifies the result: content digest plus option fingerprint
	Key      string
	Metadata map[string]string
	Text     []byte
}

// Cache stores OCR results keyed by Key so repeated requests for the same
// image and settings skip the subprocess.
type Cache interface {
	// GetMetadata returns the stored metadata, or nil if the key is unknown
	GetMetadata(key string) (map[string]string, error)
	// StreamText writes the cached text to w
	StreamText(key string, w io.Writer) error
	Save(res Result) (*jetstream.ObjectInfo, error)
}

// Key derives the cache key for an input payload and an option
// fingerprint (see tesseract.Options.Fingerprint).
func Key(content []byte, fingerprint string) string {
	contentSum := sha256.Sum256(content)
	fpSum := sha256.Sum256([]byte(fingerprint))
	return hex.EncodeToString(contentSum[:]) + "-" + hex.EncodeToString(fpSum[:8])
}

// NopCache drops everything. Used when no NATS connection is configured.
type NopCache struct{}

func (c *NopCache) GetMetadata(key string) (map[string]string, error) {
	return nil, nil
}

func (c *NopCache) StreamText(key string, w io.Writer) error {
	return nil
}

func (c *NopCache) Save(res Result) (*jetstream.ObjectInfo, error) {
	return &jetstream.ObjectInfo{}, nil
}
