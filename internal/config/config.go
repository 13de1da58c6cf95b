package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dgallion1/docedit/internal/parser"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth. Empty disables bearer checks.
	APIKey string `yaml:"api_key"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job and session state
	JobTTL      time.Duration `yaml:"job_ttl"`
	SessionTTL  time.Duration `yaml:"session_ttl"`
	StatsWindow time.Duration `yaml:"stats_window"`

	// Export naming
	ExportPrefix      string `yaml:"export_prefix"`
	DefaultExportName string `yaml:"default_export_name"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`

	// DOCX paragraph style to block kind. Empty keeps the built-in Heading 1/Heading 2 map.
	StyleMap []StyleMapEntry `yaml:"style_map"`
}

// StyleMapEntry is one configured style mapping, e.g. {style: "Title", kind: "heading1"}.
type StyleMapEntry struct {
	Style string `yaml:"style"`
	Kind  string `yaml:"kind"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:                 "8090",
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxUploadBytes:       52428800, // 50MB
		JobTTL:               1 * time.Hour,
		SessionTTL:           2 * time.Hour,
		StatsWindow:          1 * time.Hour,
		ExportPrefix:         "edited-",
		DefaultExportName:    "document.docx",
		PDFFallbackPdftotext: true,
	}
}

// Load layers defaults, the optional YAML file named by DOCEDIT_CONFIG, and env overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("DOCEDIT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("DOCEDIT_API_KEY", cfg.APIKey)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.SessionTTL = envDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)
	cfg.ExportPrefix = envOr("EXPORT_PREFIX", cfg.ExportPrefix)
	cfg.DefaultExportName = envOr("DEFAULT_EXPORT_NAME", cfg.DefaultExportName)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	def := Default()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = def.MaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = def.JobTTL
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = def.StatsWindow
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.DefaultExportName == "" || filepath.Ext(c.DefaultExportName) == "" {
		return errors.New("DEFAULT_EXPORT_NAME needs a base name and extension")
	}
	if _, err := c.ImportOptions(); err != nil {
		return err
	}
	return nil
}

// ImportOptions converts the importer settings for the parser package.
func (c Config) ImportOptions() (parser.Options, error) {
	opts := parser.Options{FallbackPdftotext: c.PDFFallbackPdftotext}
	for _, e := range c.StyleMap {
		m, err := parser.ParseStyleMapping(e.Style, e.Kind)
		if err != nil {
			return parser.Options{}, err
		}
		opts.StyleMap = append(opts.StyleMap, m)
	}
	return opts, nil
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
