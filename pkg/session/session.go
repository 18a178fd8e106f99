// Package session keeps per-browser state server-side in a cache.Service,
// addressed by a random id cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"IndexScope/pkg/cache"
	applogger "IndexScope/pkg/logger"
)

const contextKey = "indexscope.session"

// Session is the state of one browser: the selected index and a pending
// one-shot error message.
type Session struct {
	ID    string `json:"-"`
	Index string `json:"index,omitempty"`
	Error string `json:"error,omitempty"`

	dirty bool
}

// SetIndex records the selected index.
func (s *Session) SetIndex(index string) {
	if s.Index != index {
		s.Index = index
		s.dirty = true
	}
}

// ClearIndex forgets the selection.
func (s *Session) ClearIndex() { s.SetIndex("") }

// Flash stores msg to be shown on the next page render.
func (s *Session) Flash(msg string) {
	s.Error = msg
	s.dirty = true
}

// PopError returns the pending message and clears it. Empty when none.
func (s *Session) PopError() string {
	msg := s.Error
	if msg != "" {
		s.Error = ""
		s.dirty = true
	}
	return msg
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool { return s.dirty }

// Option configures Manager.
type Option func(*Manager)

// WithTTL sets how long an idle session is kept.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithSecureCookie marks the cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(m *Manager) {
		m.l = l
	}
}

// Manager loads and saves sessions.
type Manager struct {
	store      cache.Service
	ttl        time.Duration
	cookieName string
	secure     bool
	l          *applogger.Logger
}

func NewManager(store cache.Service, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		ttl:        24 * time.Hour,
		cookieName: "indexscope_session",
		l:          applogger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func storeKey(id string) string { return cache.GenerateKey("session", id) }

// Load returns the session for id, or a fresh one when id is unknown, expired or malformed.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return &Session{ID: uuid.NewString()}, nil
	}
	s, err := cache.GetJSON[Session](ctx, m.store, storeKey(id))
	if errors.Is(err, cache.ErrCacheMiss) {
		return &Session{ID: id}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s.ID = id
	return &s, nil
}

// Save persists s and refreshes its expiry.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if err := cache.SetJSON(ctx, m.store, storeKey(s.ID), s, m.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.dirty = false
	return nil
}

// Touch extends the expiry of an unchanged session.
func (m *Manager) Touch(ctx context.Context, s *Session) error {
	ok, err := m.store.Expire(ctx, storeKey(s.ID), m.ttl)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if !ok {
		return m.Save(ctx, s)
	}
	return nil
}

// Middleware attaches the request's session to the echo context and saves it
// after the handler returns. The cookie is written before the handler runs so
// redirects carry it too.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			var id string
			if ck, err := c.Cookie(m.cookieName); err == nil {
				id = ck.Value
			}
			s, err := m.Load(ctx, id)
			if err != nil {
				m.l.Error("session load failed", applogger.Error(err))
				s = &Session{ID: uuid.NewString()}
			}

			c.SetCookie(&http.Cookie{
				Name:     m.cookieName,
				Value:    s.ID,
				Path:     "/",
				MaxAge:   int(m.ttl.Seconds()),
				HttpOnly: true,
				Secure:   m.secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(contextKey, s)

			herr := next(c)

			var serr error
			if s.Dirty() {
				serr = m.Save(ctx, s)
			} else {
				serr = m.Touch(ctx, s)
			}
			if serr != nil {
				m.l.Error("session save failed", applogger.String("session", s.ID), applogger.Error(serr))
			}
			return herr
		}
	}
}

// FromContext returns the session attached by Middleware. Without the
// middleware it returns a detached session so handlers never see nil.
func FromContext(c echo.Context) *Session {
	if s, ok := c.Get(contextKey).(*Session); ok && s != nil {
		return s
	}
	s := &Session{ID: uuid.NewString()}
	c.Set(contextKey, s)
	return s
}
