package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("search session not found")

// Registry owns the live sessions, keyed by a random id.
type Registry struct {
	cfg Config

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(cfg Config) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Registry{cfg: cfg, sessions: make(map[string]*Session)}
}

// Create starts a session. speechCapable reports whether the browser has a
// recognizer it can relay through the session.
func (r *Registry) Create(speechCapable bool) *Session {
	speech := Unavailable
	if speechCapable {
		speech = NewRelay()
	}
	sess := NewSession(uuid.NewString(), speech, r.cfg)

	r.mu.Lock()
	r.sessions[sess.ID()] = sess
	r.mu.Unlock()
	return sess
}

func (r *Registry) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Remove closes and forgets a session.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		sess.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for at least idle and returns how many went.
func (r *Registry) Sweep(idle time.Duration) int {
	var stale []*Session

	r.mu.Lock()
	for id, sess := range r.sessions {
		if sess.Idle(idle) {
			stale = append(stale, sess)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done, then closes all sessions.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.cfg.Logger.Debug("search: swept idle sessions", slog.Int("count", n))
			}
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
