// Package session holds an authenticated connection to a remote store.
//
// A Session is an explicit value created by Open and passed to whoever needs
// the store. When the credential behind the store expires, the next call to
// Store opens a fresh one.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arman-k/stegdrive/internal/store"
)

// ErrClosed is returned by Store after Close.
var ErrClosed = errors.New("session: closed")

// Opener authenticates and returns a ready store together with the time its
// credential expires. A zero expiry never expires.
type Opener func(ctx context.Context) (store.Store, time.Time, error)

// Session owns the store returned by its Opener.
type Session struct {
	open   Opener
	logger *zap.Logger
	now    func() time.Time
	skew   time.Duration

	mu      sync.Mutex
	st      store.Store
	expires time.Time
	closed  bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSkew refreshes the credential this long before it actually expires.
func WithSkew(d time.Duration) Option {
	return func(s *Session) {
		s.skew = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Open authenticates with opener and returns a live session.
func Open(ctx context.Context, opener Opener, opts ...Option) (*Session, error) {
	s := &Session{
		open:   opener,
		logger: zap.NewNop(),
		now:    time.Now,
		skew:   time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	st, expires, err := opener(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	s.st, s.expires = st, expires
	return s, nil
}

// Static wraps a store that never needs re-authentication.
func Static(st store.Store) *Session {
	return &Session{
		logger: zap.NewNop(),
		now:    time.Now,
		st:     st,
	}
}

// Store returns the current store, re-opening it first if its credential has
// expired.
func (s *Session) Store(ctx context.Context) (store.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.expires.IsZero() || s.now().Add(s.skew).Before(s.expires) {
		return s.st, nil
	}

	s.logger.Info("refreshing expired session", zap.Time("expired", s.expires))
	st, expires, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("refreshing session: %w", err)
	}
	if err := s.st.Close(); err != nil {
		s.logger.Warn("closing expired store", zap.Error(err))
	}
	s.st, s.expires = st, expires
	return s.st, nil
}

// Expires returns when the current credential expires. Zero means never.
func (s *Session) Expires() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expires
}

// Close closes the current store. Further calls to Store fail.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.st.Close()
}
