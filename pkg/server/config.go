package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-go/vbind/pkg/metrics"
	"github.com/vango-go/vbind/pkg/render"
)

// ServerConfig holds configuration for the live server.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: ":8080".
	Address string

	// WSPath is the WebSocket endpoint clients join sessions on.
	// Default: "/ws".
	WSPath string

	// Timeouts

	// ReadTimeout is the maximum time to wait for a message from the client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// AttachTimeout is how long a rendered session waits for its WebSocket
	// before it is dropped.
	// Default: 30 seconds.
	AttachTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// Limits

	// MaxSessions is the maximum number of concurrent sessions.
	// Default: 0 (no limit).
	MaxSessions int

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// Rendering

	// Render configures the HTML renderer for pages and patches.
	Render render.RendererConfig

	// Observability

	// Logger defaults to slog.Default() with component=server.
	Logger *slog.Logger

	// Metrics is optional. A nil value records nothing.
	Metrics *metrics.Metrics

	// Gatherer backs the /metrics endpoint.
	// Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Tracer defaults to otel.Tracer("vbind").
	Tracer trace.Tracer

	// Middleware wraps every route, after recovery and tracing.
	Middleware []func(http.Handler) http.Handler

	// CheckOrigin validates the WebSocket Origin header.
	// Default: same-origin check performed by gorilla/websocket.
	CheckOrigin func(r *http.Request) bool
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:         ":8080",
		WSPath:          "/ws",
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		AttachTimeout:   30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxMessageSize:  64 * 1024,
	}
}

// WithAddress sets the server address and returns the config for chaining.
func (c *ServerConfig) WithAddress(addr string) *ServerConfig {
	c.Address = addr
	return c
}

// WithMaxSessions sets the maximum sessions and returns the config for chaining.
func (c *ServerConfig) WithMaxSessions(n int) *ServerConfig {
	c.MaxSessions = n
	return c
}

// WithMetrics sets the collectors and the gatherer serving them.
func (c *ServerConfig) WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) *ServerConfig {
	c.Metrics = m
	c.Gatherer = g
	return c
}

// Validate reports configuration that cannot work.
func (c *ServerConfig) Validate() error {
	if c.WSPath == "" || c.WSPath[0] != '/' {
		return errors.New("server: WSPath must start with /")
	}
	if c.WSPath == "/" {
		return errors.New("server: WSPath must not be /")
	}
	if c.Render.OmitDirectives {
		return errors.New("server: the live client needs directive attributes; unset Render.OmitDirectives")
	}
	if c.MaxSessions < 0 {
		return errors.New("server: MaxSessions must not be negative")
	}
	if c.MaxMessageSize <= 0 {
		return errors.New("server: MaxMessageSize must be positive")
	}
	return nil
}

// fill replaces zero values with defaults.
func (c *ServerConfig) fill() {
	d := DefaultServerConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.WSPath == "" {
		c.WSPath = d.WSPath
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.AttachTimeout == 0 {
		c.AttachTimeout = d.AttachTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
}
