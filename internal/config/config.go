package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gonet/dgnet/pkg/httpclient"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName               string        `mapstructure:"app_name"`
	Env                   string        `mapstructure:"app_env"`
	LogLevel              string        `mapstructure:"log_level"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	HeadersFile           string        `mapstructure:"headers_file"`
	RequestsFile          string        `mapstructure:"requests_file"`
	PublishersFile        string        `mapstructure:"publishers_file"`

	// BaseHeaders are applied to every outgoing request.
	BaseHeaders http.Header `mapstructure:"-"`
}

// headersFile is the on-disk shape of headers_file.
type headersFile struct {
	Headers map[string]string `json:"headers" yaml:"headers"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "dgnet")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("headers_file", "")
	v.SetDefault("requests_file", "./configs/requests.yaml")
	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	cfg.BaseHeaders = httpclient.DefaultHeaders()
	if path := strings.TrimSpace(cfg.HeadersFile); path != "" {
		headers, err := LoadHeaders(path)
		if err != nil {
			return nil, err
		}
		for k, val := range headers {
			cfg.BaseHeaders.Set(k, val)
		}
	}

	return &cfg, nil
}

// LoadHeaders reads baseline header overrides from a YAML or JSON file.
func LoadHeaders(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read headers file: %w", err)
	}

	var file headersFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &file)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(raw, &file)
	default:
		return nil, fmt.Errorf("headers file %q: unsupported extension (expected YAML or JSON)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("decode headers file: %w", err)
	}

	out := make(map[string]string, len(file.Headers))
	for k, val := range file.Headers {
		key := strings.TrimSpace(k)
		if key == "" {
			return nil, errors.New("headers file contains an empty header name")
		}
		out[key] = strings.TrimSpace(val)
	}
	return out, nil
}
