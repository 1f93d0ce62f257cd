package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/lessonfmt/internal/render"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64
	MaxTextBytes   int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Rendering
	ThemePath   string
	StatsWindow int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("LESSONFMT_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB
		MaxTextBytes:   envInt64("MAX_TEXT_BYTES", 1048576),    // 1MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		ThemePath:   os.Getenv("LESSONFMT_THEME"),
		StatsWindow: envInt("RENDER_STATS_WINDOW", 1000),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.MaxTextBytes <= 0 {
		cfg.MaxTextBytes = 1048576
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1000
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("LESSONFMT_API_KEY is required")
	}
	if c.MaxTextBytes > c.MaxUploadBytes {
		return fmt.Errorf("MAX_TEXT_BYTES (%d) exceeds MAX_UPLOAD_BYTES (%d)", c.MaxTextBytes, c.MaxUploadBytes)
	}
	return nil
}

// Theme returns the configured render theme, or the default when no theme
// file is set.
func (c Config) Theme() (render.Theme, error) {
	if c.ThemePath == "" {
		return render.DefaultTheme(), nil
	}
	return render.LoadTheme(c.ThemePath)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
