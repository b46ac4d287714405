package main

import (
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/ocrkit/tesseract-service/internal/cache"
	natsconn "github.com/ocrkit/tesseract-service/internal/cache/nats"
	"github.com/ocrkit/tesseract-service/internal/config"
	"github.com/ocrkit/tesseract-service/internal/ocr"
	"github.com/ocrkit/tesseract-service/pkg/tesseract"
)

var (
	logger *slog.Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{}))
	srv    http.Server
)

func main() {
	conf, err := config.NewOcrConfigFromEnv()
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	if conf.Debug {
		conf.LogLevel = slog.LevelDebug
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: conf.LogLevel}))

	args := os.Args
	// one shot mode: don't start a server, just process a single file provided on the command line
	if len(args) > 1 {
		service := ocr.New(conf, &cache.NopCache{}, logger)
		service.PrintMetadataAndTextToStdout(args[1])
		return
	}

	if os.Getenv("GOMEMLIMIT") != "" {
		logger.Info("GOMEMLIMIT", "Bytes", debug.SetMemoryLimit(-1), "MBytes", debug.SetMemoryLimit(-1)/1024/1024)
	}
	buildinfo, _ := debug.ReadBuildInfo()
	logger.Debug("Info", "buildinfo", buildinfo)

	if !tesseract.Installed() {
		logger.Warn("tesseract is not in PATH! OCR requests will fail until it is installed.")
	} else if ok, reason := tesseract.ValidateLanguages(conf.Languages); !ok {
		logger.Warn("Configured languages are not all installed", "langs", conf.Languages, "reason", reason)
	}

	var resultCache cache.Cache = &cache.NopCache{}
	nc, err := natsconn.SetupNatsConnection(conf, logger)
	if err != nil {
		logger.Warn("NATS not available. Results will not be cached.", "err", err)
	} else {
		defer nc.Drain()
		store, err := cache.New(conf, logger, nc)
		if err != nil {
			if conf.FailWithoutJetstream {
				logger.Error("Fatal: could not set up object store cache", "err", err)
				os.Exit(1)
			}
			logger.Warn("JetStream not available. Results will not be cached.", "err", err)
		} else {
			resultCache = store
		}
	}

	service := ocr.New(conf, resultCache, logger)
	if nc != nil {
		service.RegisterNatsService(nc)
	}

	if conf.NoHttp {
		if nc == nil {
			logger.Error("Fatal: NATS not connected and HTTP disabled.")
			os.Exit(1)
		}
		wait := make(chan bool, 1)
		logger.Info("Service started with no HTTP endpoints. Waiting for interrupt.")
		<-wait
	}

	srv.Addr = conf.SrvAddr
	srv.Handler = service.Router()
	logger.Info("Service started", "address", srv.Addr)
	defer logger.Info("HTTP Server stopped.")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		// Error starting or closing listener:
		logger.Error("Webserver failed", "err", err)
	}
}
