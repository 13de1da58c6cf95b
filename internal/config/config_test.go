package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docedit/internal/docmodel"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DOCEDIT_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected port %q, got %q", "8090", cfg.Port)
	}
	if cfg.ExportPrefix != "edited-" {
		t.Errorf("expected export prefix %q, got %q", "edited-", cfg.ExportPrefix)
	}
	if cfg.DefaultExportName != "document.docx" {
		t.Errorf("expected default export name %q, got %q", "document.docx", cfg.DefaultExportName)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docedit.yaml")
	content := `port: "9000"
worker_count: 8
session_ttl: 30m
export_prefix: ${TEST_PREFIX}
style_map:
  - style: Title
    kind: heading1
  - style: Subtitle
    kind: heading2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCEDIT_CONFIG", path)
	t.Setenv("TEST_PREFIX", "copy-")
	t.Setenv("WORKER_COUNT", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port from file, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected env to override file, got %d", cfg.WorkerCount)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected session ttl 30m, got %s", cfg.SessionTTL)
	}
	if cfg.ExportPrefix != "copy-" {
		t.Errorf("expected expanded prefix %q, got %q", "copy-", cfg.ExportPrefix)
	}

	opts, err := cfg.ImportOptions()
	if err != nil {
		t.Fatalf("import options: %v", err)
	}
	if len(opts.StyleMap) != 2 || opts.StyleMap[0].Kind != docmodel.KindHeading1 {
		t.Errorf("expected two style mappings, got %+v", opts.StyleMap)
	}
	if !opts.FallbackPdftotext {
		t.Error("expected pdftotext fallback on by default")
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("worker_count: [nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCEDIT_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}

	t.Setenv("DOCEDIT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected read error for a missing file")
	}
}

func TestLoad_NonPositiveFallsBack(t *testing.T) {
	t.Setenv("DOCEDIT_CONFIG", "")
	t.Setenv("WORKER_COUNT", "0")
	t.Setenv("JOB_TTL", "-1s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected worker count 4, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected job ttl 1h, got %s", cfg.JobTTL)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Port = "http" }},
		{"export name", func(c *Config) { c.DefaultExportName = "document" }},
		{"style kind", func(c *Config) { c.StyleMap = []StyleMapEntry{{Style: "Title", Kind: "heading3"}} }},
		{"list kind", func(c *Config) { c.StyleMap = []StyleMapEntry{{Style: "List", Kind: "bulletListItem"}} }},
		{"empty style", func(c *Config) { c.StyleMap = []StyleMapEntry{{Style: " ", Kind: "heading1"}} }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
