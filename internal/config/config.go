package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/vango-dev/cells/internal/errors"
)

const (
	// JSONFileName is the name of the JSON configuration file.
	JSONFileName = "cells.json"

	// TOMLFileName is the name of the TOML configuration file.
	TOMLFileName = "cells.toml"

	// DefaultPort is the default preview server port.
	DefaultPort = 7070

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultMaxDepth is the default named-child nesting limit.
	DefaultMaxDepth = 64

	// DefaultMetricsPath is where the preview server exposes metrics.
	DefaultMetricsPath = "/metrics"
)

// Config represents the complete cells configuration.
type Config struct {
	// Preview contains preview server configuration.
	Preview PreviewConfig `json:"preview,omitempty" toml:"preview"`

	// Render contains HTML rendering configuration.
	Render RenderConfig `json:"render,omitempty" toml:"render"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" toml:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty" toml:"tracing"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" toml:"log"`

	// Source contains document source configuration.
	Source SourceConfig `json:"source,omitempty" toml:"source"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PreviewConfig contains preview server settings.
type PreviewConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" toml:"host"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" toml:"port"`

	// Reload enables live reload when the document changes.
	Reload bool `json:"reload" toml:"reload"`

	// Title is used when the document has no title.
	Title string `json:"title,omitempty" toml:"title"`
}

// RenderConfig contains HTML rendering settings.
type RenderConfig struct {
	// Pretty enables indented HTML output.
	Pretty bool `json:"pretty,omitempty" toml:"pretty"`

	// Indent is the indentation unit in pretty mode.
	Indent string `json:"indent,omitempty" toml:"indent"`

	// MaxDepth bounds named-child nesting.
	MaxDepth int `json:"maxDepth,omitempty" toml:"maxDepth"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes render metrics.
	Enabled bool `json:"enabled" toml:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" toml:"namespace"`

	// Path is the HTTP path of the metrics endpoint.
	Path string `json:"path,omitempty" toml:"path"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// TracerName names the tracer used for render spans.
	TracerName string `json:"tracerName,omitempty" toml:"tracerName"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" toml:"level"`

	// Format is text or json.
	Format string `json:"format,omitempty" toml:"format"`
}

// SourceConfig contains document source settings.
type SourceConfig struct {
	// Region is the AWS region for s3:// documents. Empty uses the
	// SDK's default resolution.
	Region string `json:"region,omitempty" toml:"region"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Preview: PreviewConfig{
			Host:   DefaultHost,
			Port:   DefaultPort,
			Reload: true,
			Title:  "Cells",
		},
		Render: RenderConfig{
			Indent:   "  ",
			MaxDepth: DefaultMaxDepth,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "cells",
			Path:      DefaultMetricsPath,
		},
		Tracing: TracingConfig{
			TracerName: "cells",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for cells.json, then cells.toml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{JSONFileName, TOMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E040").
		WithPath(dir).
		WithDetail("No " + JSONFileName + " or " + TOMLFileName + " found in " + dir).
		WithSuggestion("Run 'cells init' to write a default configuration")
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension; anything but .toml is parsed as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E040").WithPath(path)
		}
		return nil, errors.New("E041").WithPath(path).Wrap(err)
	}

	cfg := New()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E041").
			WithPath(path).
			Wrap(err).
			WithSuggestion("Check that " + filepath.Base(path) + " is well-formed")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path, as TOML when the
// extension is .toml and as JSON otherwise.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E041").WithPath(path).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E041").WithPath(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Preview.Host == "" {
		c.Preview.Host = DefaultHost
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPort
	}
	if c.Render.Indent == "" {
		c.Render.Indent = "  "
	}
	if c.Render.MaxDepth == 0 {
		c.Render.MaxDepth = DefaultMaxDepth
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "cells"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "cells"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("E042").WithPath(c.configPath).WithDetail(detail)
	}

	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return invalid("preview.port must be between 0 and 65535")
	}
	if c.Render.MaxDepth < 1 {
		return invalid("render.maxDepth must be at least 1")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path must start with /")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid(err.Error())
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format must be text or json")
	}
	return nil
}

// PreviewAddress returns the address string for the preview server.
func (c *Config) PreviewAddress() string {
	return c.Preview.Host + ":" + strconv.Itoa(c.Preview.Port)
}

// PreviewURL returns the full URL for the preview server.
func (c *Config) PreviewURL() string {
	return "http://" + c.PreviewAddress()
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists reports whether a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{JSONFileName, TOMLFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindRoot walks up from startDir to the first directory holding a
// config file.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E040").
				WithDetail("No configuration found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadOrDefault loads the configuration found at or above dir, or returns
// the defaults when none exists.
func LoadOrDefault(dir string) (*Config, error) {
	root, err := FindRoot(dir)
	if err != nil {
		return New(), nil
	}
	return Load(root)
}
