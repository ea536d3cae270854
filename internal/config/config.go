package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Environment variables recognized by ApplyEnv and the CLI.
const (
	EnvAPIBaseURL = "TASKIFYX_API_BASE_URL"
	EnvConfig     = "TASKIFYX_CONFIG"
	EnvDBPath     = "TASKIFYX_DB_PATH"
	EnvDevMode    = "TASKIFYX_DEV_MODE"
	EnvAppName    = "TASKIFYX_APP_NAME"
)

// ReorderFailure names a policy for failed move persistence.
type ReorderFailure string

const (
	ReorderFailureKeep   ReorderFailure = "keep"
	ReorderFailureRevert ReorderFailure = "revert"
	ReorderFailureReload ReorderFailure = "reload"
)

type Config struct {
	API      APIConfig      `toml:"api"`
	Board    BoardConfig    `toml:"board"`
	Toast    ToastConfig    `toml:"toast"`
	Logging  LoggingConfig  `toml:"logging"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
}

type APIConfig struct {
	BaseURL string `toml:"base_url"`
	// Timeout is a Go duration string. "0s" disables the client timeout.
	Timeout string `toml:"timeout"`
}

type BoardConfig struct {
	ReorderFailure  ReorderFailure `toml:"reorder_failure"`
	ShowDescription bool           `toml:"show_description"`
}

type ToastConfig struct {
	Duration string `toml:"duration"`
}

type LoggingConfig struct {
	Level   string               `toml:"level"`
	DevFile LoggingDevFileConfig `toml:"dev_file"`
}

type LoggingDevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ServerConfig struct {
	HTTPBind        string `toml:"http_bind"`
	APIEndpoint     string `toml:"api_endpoint"`
	MCPEndpoint     string `toml:"mcp_endpoint"`
	MetricsEndpoint string `toml:"metrics_endpoint"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

func Default(dbPath string) Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:5000/api",
			Timeout: "0s",
		},
		Board: BoardConfig{
			ReorderFailure:  ReorderFailureKeep,
			ShowDescription: true,
		},
		Toast: ToastConfig{
			Duration: "3s",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: LoggingDevFileConfig{
				Enabled: true,
				Dir:     ".taskifyx/log",
			},
		},
		Server: ServerConfig{
			HTTPBind:        "127.0.0.1:5000",
			APIEndpoint:     "/api",
			MCPEndpoint:     "/mcp",
			MetricsEndpoint: "/metrics",
		},
		Database: DatabaseConfig{
			Path: dbPath,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadDotEnv reads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment overrides onto cfg.
func ApplyEnv(cfg Config, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvAPIBaseURL)); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvDBPath)); v != "" {
		cfg.Database.Path = v
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}
	if _, err := parseNonNegativeDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("invalid api.timeout: %w", err)
	}

	switch ReorderFailure(strings.TrimSpace(strings.ToLower(string(c.Board.ReorderFailure)))) {
	case "", ReorderFailureKeep, ReorderFailureRevert, ReorderFailureReload:
	default:
		return fmt.Errorf("invalid board.reorder_failure: %q", c.Board.ReorderFailure)
	}

	toast, err := parseNonNegativeDuration(c.Toast.Duration)
	if err != nil {
		return fmt.Errorf("invalid toast.duration: %w", err)
	}
	if toast == 0 {
		return errors.New("toast.duration must be > 0")
	}

	if _, err := charmLog.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	for name, endpoint := range map[string]string{
		"server.api_endpoint":     c.Server.APIEndpoint,
		"server.mcp_endpoint":     c.Server.MCPEndpoint,
		"server.metrics_endpoint": c.Server.MetricsEndpoint,
	} {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with /: %q", name, endpoint)
		}
	}

	return nil
}

// APITimeout returns the parsed client timeout.
func (c Config) APITimeout() time.Duration {
	d, _ := parseNonNegativeDuration(c.API.Timeout)
	return d
}

// ToastDuration returns how long notifications stay visible.
func (c Config) ToastDuration() time.Duration {
	d, err := parseNonNegativeDuration(c.Toast.Duration)
	if err != nil || d == 0 {
		return 3 * time.Second
	}
	return d
}

// ParseBoolEnv reads a boolean environment variable; ok is false when it is
// unset or unparseable.
func ParseBoolEnv(getenv func(string) string, name string) (value bool, ok bool) {
	if getenv == nil {
		getenv = os.Getenv
	}
	raw := strings.TrimSpace(getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func parseNonNegativeDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0, got %s", raw)
	}
	return d, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
