package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	vbind "github.com/vango-go/vbind"
	"github.com/vango-go/vbind/pkg/dom"
	"github.com/vango-go/vbind/pkg/metrics"
	"github.com/vango-go/vbind/pkg/render"
)

var (
	// ErrUnknownTarget is returned for events naming a hydration ID that is
	// not in the session's document.
	ErrUnknownTarget = errors.New("server: unknown event target")

	// ErrEmptyEventType is returned for events without a type.
	ErrEmptyEventType = errors.New("server: event has no type")

	// ErrSessionLimit is returned when MaxSessions is reached.
	ErrSessionLimit = errors.New("server: session limit reached")
)

// Session is one page view: a private document with its bound VM. Events
// on a session are handled one at a time.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	doc      *dom.Document
	vm       *vbind.VM
	attached bool
	closed   bool
	conn     io.Closer

	renderer *render.Renderer
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// Document returns the session's live document.
func (s *Session) Document() *dom.Document { return s.doc }

// VM returns the session's view model.
func (s *Session) VM() *vbind.VM { return s.vm }

// Dispatch applies ev to the session's document and returns the patches
// that bring a client rendering of the page up to date.
func (s *Session) Dispatch(ctx context.Context, ev ClientEvent) ([]Patch, error) {
	_, span := s.tracer.Start(ctx, "vbind.event", trace.WithAttributes(
		attribute.String("vbind.session", s.ID),
		attribute.String("vbind.event.type", ev.Type),
		attribute.String("vbind.event.target", ev.Target),
	))
	defer span.End()

	patches, err := s.dispatch(ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("vbind.patches", len(patches)))
	return patches, err
}

func (s *Session) dispatch(ev ClientEvent) ([]Patch, error) {
	if ev.Type == "" {
		return nil, ErrEmptyEventType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.doc.ByHID(ev.Target)
	if node == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, ev.Target)
	}

	rec := newRecorder()
	stop := s.doc.Observe(rec.record)
	start := time.Now()

	var err error
	var echo *dom.Node
	switch ev.Type {
	case "input":
		echo = node
		err = node.Input(ev.Value)
	default:
		err = node.Dispatch(&dom.Event{Type: ev.Type, Target: node})
	}
	stop()
	s.metrics.RecordEvent(ev.Type, time.Since(start), err)

	// Patches still go out on a listener error; earlier listeners may have
	// changed the document.
	patches, rerr := rec.patches(s.renderer, echo, ev.Value)
	if rerr != nil {
		return nil, rerr
	}
	return patches, err
}

// attach marks the session as joined by a WebSocket. Only one connection
// may join a session.
func (s *Session) attach() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached || s.closed {
		return false
	}
	s.attached = true
	return true
}

// setConn records the joined connection so close can end it.
func (s *Session) setConn(c io.Closer) {
	s.mu.Lock()
	closed := s.closed
	s.conn = c
	s.mu.Unlock()
	if closed {
		_ = c.Close()
	}
}

func (s *Session) isAttached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

func (s *Session) close() {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// =============================================================================
// Session Manager
// =============================================================================

// SessionManager tracks live sessions by ID.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
}

// NewSessionManager creates a manager allowing at most max sessions
// (0 means no limit).
func NewSessionManager(max int) *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session), max: max}
}

// Get returns the session with the given ID, or nil.
func (m *SessionManager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) add(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.max > 0 && len(m.sessions) >= m.max {
		return ErrSessionLimit
	}
	m.sessions[s.ID] = s
	return nil
}

// Remove drops the session with the given ID.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if s != nil {
		s.close()
	}
}

// Shutdown drops every session.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}
}
