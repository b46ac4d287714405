//go:build !embed_nats

package nats

import (
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/ocrkit/tesseract-service/internal/config"
)

const NatsEmbedded bool = false

var errNatsNotEmbedded = errors.New("NATS has not been embedded in this build")

func ConnectToEmbeddedNatsServer(_ *config.OcrConfig) (*nats.Conn, error) {
	return nil, errNatsNotEmbedded
}
