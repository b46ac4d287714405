package config

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"go-simpler.org/env"
)

// OcrConfig represents the configuration of this service
type OcrConfig struct {
	// Name of the object store bucket in NATS holding cached OCR results.
	// Default: OCRS_RESULTS
	Bucket string `env:"OCRS_BUCKET" default:"OCRS_RESULTS"`
	// Add source info to log statements. Default: false
	Debug bool `env:"OCRS_DEBUG" default:"false"`
	// Image resolution passed to Tesseract when the image carries none
	DPI int `env:"OCRS_DPI" default:"300"`
	// wether to expose the embedded NATS server to other clients. Default: false
	ExposeNats bool `env:"OCRS_EXPOSE_NATS" default:"false"`
	// If true the service will exit with an error if NATS or JetStream can't be connected
	FailWithoutJetstream bool `env:"OCRS_FAIL_WITHOUT_JS" default:"true"`
	// if true, plain text results have newlines replaced with whitespace
	FoldNewlines bool `env:"OCRS_FOLD_NEWLINES" default:"true"`
	// List of 3-letter language codes, separated by `+`, to be passed to
	// Tesseract. NOTE: The languages need to be installed.
	Languages string `env:"OCRS_LANGS" default:"eng"`
	// Log level (DEBUG, INFO, WARN, ERROR)
	LogLevelStr string `env:"OCRS_LOG_LEVEL" default:"INFO"`
	LogLevel    slog.Level
	// Maximum size a request payload may have; processing is aborted if it is bigger
	MaxFileSize      string `env:"OCRS_MAX_FILE_SIZE" default:"300MiB"`
	MaxFileSizeBytes uint64
	// maximum size of a payload to be processed solely in-memory instead of
	// being spilled to a temporary file
	MaxInMemory      string `env:"OCRS_MAX_IN_MEMORY" default:"8MiB"`
	MaxInMemoryBytes uint64
	// Maximum number of concurrent tesseract subprocesses. 0 means NumCPU.
	MaxProcs int64 `env:"OCRS_MAX_PROCS" default:"0"`
	// NatsConnectRetries is the number of attempts to connect to external NATS server(s)
	NatsConnectRetries int `env:"OCRS_NATS_CONNECT_RETRIES" default:"10"`
	// embedded NATS server host/ip address, if exposed. Default: localhost
	NatsHost string `env:"OCRS_NATS_HOST" default:"localhost"`
	// NATS max msg size (embedded server only)
	NatsMaxPayload int32 `env:"OCRS_NATS_MAX_PAYLOAD" default:"8388608"`
	// embedded NATS server port, if exposed. Default: 4222
	NatsPort int `env:"OCRS_NATS_PORT" default:"4222"`
	// embedded NATS server storage location
	NatsStoreDir string `env:"OCRS_NATS_STORE_DIR"`
	// Timeout for the external NATS connection
	NatsTimeout time.Duration `env:"OCRS_NATS_TIMEOUT" default:"15s"`
	// External NATS URL, e.g. nats://localhost:4222
	NatsUrl string `env:"OCRS_NATS_URL"`
	// if true, disable the HTTP server in favor of the NATS service interface
	NoHttp bool `env:"OCRS_NO_HTTP" default:"false"`
	// OCR engine mode (0-3)
	OEM int `env:"OCRS_OEM" default:"3"`
	// Page segmentation mode (0-13)
	PSM int `env:"OCRS_PSM" default:"3"`
	// How many replicas of the cache bucket to create. Default: 1
	Replicas int `env:"OCRS_REPLICAS" default:"1"`
	// HTTP listen address and/or port. Default: ':8080'
	SrvAddr string `env:"OCRS_HOST_PORT" default:":8080"`
	// Per-request Tesseract timeout
	Timeout time.Duration `env:"OCRS_TIMEOUT" default:"30s"`
}

// NewOcrConfigFromEnv returns a service config object
// populated with defaults and values from environment vars
func NewOcrConfigFromEnv() (*OcrConfig, error) {
	var cfg OcrConfig
	if err := env.Load(&cfg, nil); err != nil {
		return nil, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(cfg.LogLevelStr)); err != nil {
		return nil, fmt.Errorf("parsing log level from env: %w", err)
	}
	maxInMem, err := humanize.ParseBytes(cfg.MaxInMemory)
	if err != nil {
		return nil, fmt.Errorf("parsing max in memory payload size from env: %w", err)
	}
	cfg.MaxInMemoryBytes = maxInMem
	maxSize, err := humanize.ParseBytes(cfg.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("parsing max file size from env: %w", err)
	}
	cfg.MaxFileSizeBytes = maxSize
	if cfg.MaxProcs < 1 {
		cfg.MaxProcs = int64(runtime.NumCPU())
	}
	return &cfg, nil
}
