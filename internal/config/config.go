// Package config loads server settings from defaults, an optional YAML file
// and the environment, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/markb/sareeone/internal/log"
	"github.com/markb/sareeone/internal/validate"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CONFIG_PATH"

// DefaultPaths are tried in order when PathEnvVar is unset.
var DefaultPaths = []string{"sareeone.yaml", "sareeone.yml"}

type Config struct {
	DatabaseURL   string `koanf:"database_url" validate:"required"`
	SessionSecret string `koanf:"session_secret" validate:"required,min=16"`

	Host    string `koanf:"host" validate:"required"`
	Port    int    `koanf:"port" validate:"gte=1,lte=65535"`
	Env     string `koanf:"env" validate:"oneof=development production"`
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	LogLevel       string `koanf:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat      string `koanf:"log_format" validate:"oneof=text json"`
	LogMode        string `koanf:"log_mode" validate:"oneof=console file"`
	LogFile        string `koanf:"log_file"`
	LogBufferLines int    `koanf:"log_buffer_lines" validate:"gte=0"`

	HTTPSDomain  string `koanf:"https_domain"`
	HTTPSCertDir string `koanf:"https_cert_dir"`

	WSSendBuffer int `koanf:"ws_send_buffer" validate:"gte=1"`
}

func defaults() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              5000,
		Env:               EnvDevelopment,
		CORSOrigins:       []string{"http://localhost:5000", "http://localhost:3000"},
		RateLimitRequests: 120,
		RateLimitWindow:   time.Minute,
		LogLevel:          "info",
		LogFormat:         "text",
		LogMode:           "console",
		LogFile:           "sareeone.log",
		LogBufferLines:    500,
		HTTPSCertDir:      "certs",
		WSSendBuffer:      256,
	}
}

var envKeys = map[string]string{
	"DATABASE_URL":        "database_url",
	"SESSION_SECRET":      "session_secret",
	"HOST":                "host",
	"PORT":                "port",
	"APP_ENV":             "env",
	"APP_BASE_URL":        "base_url",
	"CORS_ORIGINS":        "cors_origins",
	"RATE_LIMIT_REQUESTS": "rate_limit_requests",
	"RATE_LIMIT_WINDOW":   "rate_limit_window",
	"LOG_LEVEL":           "log_level",
	"LOG_FORMAT":          "log_format",
	"LOG_MODE":            "log_mode",
	"LOG_FILE":            "log_file",
	"LOG_BUFFER_LINES":    "log_buffer_lines",
	"HTTPS_DOMAIN":        "https_domain",
	"HTTPS_CERT_DIR":      "https_cert_dir",
	"WS_SEND_BUFFER":      "ws_send_buffer",
}

// envKey maps an environment variable to its config key. Unknown variables
// map to "" and are ignored.
func envKey(name string) string {
	return envKeys[name]
}

// Load builds the configuration. overrides, keyed by config key, win over
// every other source; the CLI passes the flags the user set explicitly.
func Load(overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	for key, val := range overrides {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitList flattens comma-separated entries, which is how list values
// arrive from the environment.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// AllowedOrigins is the CORS allow-list, including BaseURL when set.
func (c *Config) AllowedOrigins() []string {
	origins := append([]string(nil), c.CORSOrigins...)
	if c.BaseURL != "" {
		base := strings.TrimRight(c.BaseURL, "/")
		for _, o := range origins {
			if o == base {
				return origins
			}
		}
		origins = append(origins, base)
	}
	return origins
}

// Logging converts the log fields into the logger's configuration.
func (c *Config) Logging() *log.Config {
	lc := log.DefaultConfig()
	lc.Mode = c.LogMode
	lc.Level = c.LogLevel
	lc.Format = c.LogFormat
	lc.FilePath = c.LogFile
	lc.BufferLines = c.LogBufferLines
	return lc
}
