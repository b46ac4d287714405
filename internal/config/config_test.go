package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := NewOcrConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Languages != "eng" {
		t.Errorf("want default language eng, got %q", cfg.Languages)
	}
	if cfg.DPI != 300 || cfg.PSM != 3 || cfg.OEM != 3 {
		t.Errorf("unexpected tesseract defaults: %+v", cfg)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("want 30s timeout, got %v", cfg.Timeout)
	}
	if cfg.MaxInMemoryBytes != 8*1024*1024 {
		t.Errorf("want 8MiB in-memory threshold, got %d", cfg.MaxInMemoryBytes)
	}
	if cfg.MaxProcs < 1 {
		t.Errorf("MaxProcs must resolve to a positive value, got %d", cfg.MaxProcs)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OCRS_LANGS", "deu+eng")
	t.Setenv("OCRS_MAX_IN_MEMORY", "1KiB")
	t.Setenv("OCRS_LOG_LEVEL", "DEBUG")
	cfg, err := NewOcrConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Languages != "deu+eng" {
		t.Errorf("env override ignored: %q", cfg.Languages)
	}
	if cfg.MaxInMemoryBytes != 1024 {
		t.Errorf("want 1024, got %d", cfg.MaxInMemoryBytes)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("want debug level, got %v", cfg.LogLevel)
	}
}

func TestInvalidSizeRejected(t *testing.T) {
	t.Setenv("OCRS_MAX_FILE_SIZE", "many bytes")
	if _, err := NewOcrConfigFromEnv(); err == nil {
		t.Error("want error for unparsable size")
	}
}
