package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gonet/dgnet/pkg/httpclient"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppName != "dgnet" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if !reflect.DeepEqual(cfg.BaseHeaders, httpclient.DefaultHeaders()) {
		t.Fatalf("BaseHeaders = %v, want %v", cfg.BaseHeaders, httpclient.DefaultHeaders())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "7")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestTimeout != 7*time.Second || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}

func TestLoadHeadersFileOverridesBaseline(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := filepath.Join(dir, "headers.yaml")
	content := `
headers:
  Accept: application/vnd.api+json
  X-Client: dgnet
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write headers file: %v", err)
	}
	t.Setenv("HEADERS_FILE", file)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.BaseHeaders.Values("Accept"); len(got) != 1 || got[0] != "application/vnd.api+json" {
		t.Fatalf("Accept = %v", got)
	}
	if cfg.BaseHeaders.Get("X-Client") != "dgnet" || cfg.BaseHeaders.Get("Content-Type") != "application/json" {
		t.Fatalf("BaseHeaders = %v", cfg.BaseHeaders)
	}
}

func TestLoadHeadersJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "headers.json")
	if err := os.WriteFile(file, []byte(`{"headers":{"X-Trace":" on "}}`), 0o644); err != nil {
		t.Fatalf("write headers file: %v", err)
	}
	headers, err := LoadHeaders(file)
	if err != nil {
		t.Fatalf("LoadHeaders: %v", err)
	}
	if headers["X-Trace"] != "on" {
		t.Fatalf("headers = %v", headers)
	}
}

func TestLoadHeadersRejectsUnknownExtension(t *testing.T) {
	file := filepath.Join(t.TempDir(), "headers.toml")
	if err := os.WriteFile(file, []byte(`x = 1`), 0o644); err != nil {
		t.Fatalf("write headers file: %v", err)
	}
	if _, err := LoadHeaders(file); err == nil {
		t.Fatalf("expected error for toml")
	}
}
