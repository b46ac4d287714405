// Package nats connects the service to a NATS server, either an external
// one or a server embedded in the process (build tag embed_nats).
package nats

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ocrkit/tesseract-service/internal/config"
)

// SetupNatsConnection connects the service to NATS.
// With no external URL configured, the embedded server is used if it has
// been compiled in.
func SetupNatsConnection(conf *config.OcrConfig, log *slog.Logger) (*nats.Conn, error) {
	if conf.NatsUrl == "" {
		return ConnectToEmbeddedNatsServer(conf)
	}
	var attempts int
	log.Info("Try connecting to NATS", "url", conf.NatsUrl, "timeoutSecs", conf.NatsTimeout.Seconds())
	for {
		nc, err := nats.Connect(conf.NatsUrl, nats.Name("OCRS"), nats.Timeout(conf.NatsTimeout))
		if err == nil {
			return nc, nil
		}
		attempts++
		log.Error("Connecting to NATS failed",
			"url", conf.NatsUrl,
			"timeoutSecs", conf.NatsTimeout.Seconds(),
			"err", err,
			"count", attempts,
			"maxRetries", conf.NatsConnectRetries)
		if attempts > conf.NatsConnectRetries {
			log.Error("Connecting to NATS failed. Retry count exceeded", "err", err, "maxRetries", conf.NatsConnectRetries)
			return nil, err
		}
		time.Sleep(time.Second)
	}
}
