package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	verrors "github.com/vango-go/vbind/internal/errors"
	"github.com/vango-go/vbind/pkg/compiler"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "vbind"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "VBIND"

	// DefaultPort is the default live server port.
	DefaultPort = 3000

	// DefaultHost is the default live server host.
	DefaultHost = "localhost"
)

// Config holds all vbind settings.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Render  RenderConfig  `mapstructure:"render"`
	S3      S3Config      `mapstructure:"s3"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`

	path string
}

// AppConfig names the inputs of the app to serve or render. Both accept
// plain paths, file:// and s3:// URIs.
type AppConfig struct {
	Manifest string `mapstructure:"manifest"`
	Template string `mapstructure:"template"`
}

// ServerConfig configures the live server.
type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	WSPath string `mapstructure:"ws_path"`
}

// RenderConfig configures compilation and HTML output.
type RenderConfig struct {
	Interpolation  string `mapstructure:"interpolation"`
	HydrationIDs   bool   `mapstructure:"hydration_ids"`
	OmitDirectives bool   `mapstructure:"omit_directives"`
	Pretty         bool   `mapstructure:"pretty"`
}

// S3Config configures the S3 source loader.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.manifest", "")
	v.SetDefault("app.template", "")
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.ws_path", "/ws")
	v.SetDefault("render.interpolation", "segments")
	v.SetDefault("render.hydration_ids", true)
	v.SetDefault("render.omit_directives", false)
	v.SetDefault("render.pretty", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.path_style", false)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "vbind")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New returns a Config holding only defaults.
func New() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from path and the environment. An empty path
// searches for vbind.yaml in the working directory and falls back to
// defaults when there is none. Validation warnings are returned; hard
// validation failures are errors.
func Load(path string) (*Config, []string, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, nil, verrors.New("VB301").Wrap(fmt.Errorf("reading config: %w", err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, verrors.New("VB301").Wrap(fmt.Errorf("unmarshalling config: %w", err))
	}
	cfg.path = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, cfg.Warnings(), nil
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// Validate rejects values nothing can run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return verrors.New("VB301").
			WithDetail("server.port must be between 0 and 65535")
	}
	if _, ok := compiler.ParseInterpolation(c.Render.Interpolation); !ok {
		return verrors.New("VB301").
			WithDetail(fmt.Sprintf("render.interpolation %q is not one of segments, whole-node", c.Render.Interpolation))
	}
	if !strings.HasPrefix(c.Server.WSPath, "/") {
		return verrors.New("VB301").
			WithDetail("server.ws_path must start with /")
	}
	return nil
}

// Warnings reports settings that work but are probably not intended.
func (c *Config) Warnings() []string {
	var warnings []string
	if _, ok := parseLevel(c.Log.Level); !ok {
		warnings = append(warnings, fmt.Sprintf("log level %q is unknown, using info", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		warnings = append(warnings, fmt.Sprintf("log format %q is unknown, using text", c.Log.Format))
	}
	if c.S3.Endpoint != "" && !c.S3.PathStyle {
		warnings = append(warnings, "s3.endpoint is set without s3.path_style; most S3-compatible servers need path-style addressing")
	}
	if c.Render.Interpolation == "whole-node" {
		warnings = append(warnings, "render.interpolation whole-node shows only the last placeholder of a text node")
	}
	return warnings
}

// Interpolation returns the compiler mode for Render.Interpolation.
func (c *Config) Interpolation() compiler.Interpolation {
	m, _ := compiler.ParseInterpolation(c.Render.Interpolation)
	return m
}

// Address returns host:port for the live server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// NewLogger builds the process logger described by Log.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
