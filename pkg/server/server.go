package server

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	vbind "github.com/vango-go/vbind"
	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/middleware"
	"github.com/vango-go/vbind/pkg/render"
)

//go:embed client.js
var clientJS string

// VMFactory binds a fresh view model to a session's document.
type VMFactory func(ctx context.Context, doc *dom.Document) (*vbind.VM, error)

// Server serves bound pages and keeps each page view live over a
// WebSocket: browser events are replayed on the server-side document and
// the resulting changes are sent back as patches.
type Server struct {
	config *ServerConfig

	mu       sync.RWMutex
	template []byte
	factory  VMFactory

	sessions   *SessionManager
	renderer   *render.Renderer
	upgrader   websocket.Upgrader
	router     chi.Router
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a server for the HTML template. Each page view parses its
// own copy of template and binds it with factory.
func New(config *ServerConfig, template []byte, factory VMFactory) (*Server, error) {
	if config == nil {
		config = DefaultServerConfig()
	}
	config.fill()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, errors.New("server: nil VMFactory")
	}
	if _, err := dom.Parse(bytes.NewReader(template)); err != nil {
		return nil, fmt.Errorf("server: parse template: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Tracer == nil {
		config.Tracer = otel.Tracer("vbind")
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		config:   config,
		template: template,
		factory:  factory,
		sessions: NewSessionManager(config.MaxSessions),
		renderer: render.NewRenderer(config.Render),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger.With("component", "server"),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.OpenTelemetry(middleware.WithTracer(s.config.Tracer)))
	r.Use(s.config.Middleware...)

	r.Get("/", s.handlePage)
	r.Get(s.config.WSPath, s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// NewSession parses the template, binds a VM to it and registers the
// session. The session is dropped if no WebSocket joins it within
// AttachTimeout.
func (s *Server) NewSession(ctx context.Context) (*Session, error) {
	s.mu.RLock()
	template, factory := s.template, s.factory
	s.mu.RUnlock()

	doc, err := dom.Parse(bytes.NewReader(template))
	if err != nil {
		return nil, err
	}
	vm, err := factory(ctx, doc)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:       uuid.NewString(),
		Created:  time.Now(),
		doc:      doc,
		vm:       vm,
		renderer: s.renderer,
		metrics:  s.config.Metrics,
		tracer:   s.config.Tracer,
	}
	if err := s.sessions.add(sess); err != nil {
		return nil, err
	}

	time.AfterFunc(s.config.AttachTimeout, func() {
		if !sess.isAttached() {
			s.sessions.Remove(sess.ID)
			s.logger.Debug("session expired before attach", "session_id", sess.ID)
		}
	})
	return sess, nil
}

// Reload replaces the template and factory used for new sessions. Live
// sessions keep the version they were created with.
func (s *Server) Reload(template []byte, factory VMFactory) error {
	if factory == nil {
		return errors.New("server: nil VMFactory")
	}
	if _, err := dom.Parse(bytes.NewReader(template)); err != nil {
		return fmt.Errorf("server: parse template: %w", err)
	}
	s.mu.Lock()
	s.template, s.factory = template, factory
	s.mu.Unlock()
	s.logger.Info("app reloaded")
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.NewSession(r.Context())
	if err != nil {
		if errors.Is(err, ErrSessionLimit) {
			http.Error(w, "Too many sessions", http.StatusServiceUnavailable)
			return
		}
		s.logger.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	sess.mu.Lock()
	err = s.renderer.RenderPage(&buf, render.PageData{
		Doc:          sess.doc,
		SessionID:    sess.ID,
		WSPath:       s.config.WSPath,
		ClientScript: clientJS,
	})
	sess.mu.Unlock()
	if err != nil {
		s.sessions.Remove(sess.ID)
		s.logger.Error("page render failed", "session_id", sess.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

// =============================================================================
// WebSocket
// =============================================================================

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	sess := s.sessions.Get(id)
	if sess == nil {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return
	}
	if !sess.attach() {
		http.Error(w, "Session already connected", http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.config.Metrics.RecordWSError("upgrade")
		s.sessions.Remove(id)
		s.logger.Error("websocket upgrade failed", "session_id", id, "error", err)
		return
	}

	sess.setConn(conn)
	s.config.Metrics.SessionOpened()
	defer s.config.Metrics.SessionClosed()
	defer s.sessions.Remove(id)
	defer conn.Close()

	logger := s.logger.With("session_id", id)
	logger.Debug("session attached")
	s.readLoop(r.Context(), conn, sess, logger)
	logger.Debug("session detached")
}

// readLoop handles events until the connection closes. Events are
// processed in arrival order; each gets exactly one reply.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, sess *Session, logger *slog.Logger) {
	conn.SetReadLimit(s.config.MaxMessageSize)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.config.Metrics.RecordWSError("read")
				logger.Error("read error", "error", err)
			}
			return
		}

		var ev ClientEvent
		var reply ServerMessage
		if err := json.Unmarshal(msg, &ev); err != nil {
			s.config.Metrics.RecordWSError("decode")
			logger.Warn("event decode error", "error", err)
			reply.Error = "invalid message"
		} else {
			reply.ID = ev.ID
			if ev.Type != EventPing {
				reply.Patches, err = sess.Dispatch(ctx, ev)
			}
			if err != nil {
				logger.Warn("event failed", "type", ev.Type, "target", ev.Target, "error", err)
				reply.Error = err.Error()
			}
		}
		if reply.Patches == nil {
			reply.Patches = []Patch{}
		}

		_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			s.config.Metrics.RecordWSError("write")
			logger.Error("write error", "error", err)
			return
		}
		s.config.Metrics.RecordPatches(len(reply.Patches))
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

// Run listens on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.sessions.Shutdown()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
