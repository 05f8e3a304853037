// Package session keeps a bounded, time-expiring in-memory conversation
// buffer per session. Sessions are created implicitly on first append and
// reaped by a periodic sweep once idle past the TTL. Nothing here persists
// across the process lifetime.
package session

import (
	"sync"
	"time"

	"sidefx/internal/logging"
)

const (
	// DefaultMaxHistory bounds how many messages a session retains; the
	// oldest entries are dropped first.
	DefaultMaxHistory = 20

	// DefaultTTL is the idle duration after which a session is reaped.
	DefaultTTL = 30 * time.Minute

	// DefaultSweepInterval is deliberately coarser than the TTL check it
	// performs; reaping latency is not a correctness concern.
	DefaultSweepInterval = 5 * time.Minute
)

// Message is one conversation entry.
type Message struct {
	Role    string
	Content string
}

type sessionState struct {
	history    []Message
	lastActive time.Time
}

// Store is the in-memory session ledger. Safe for concurrent use; each
// session is an independent logical owner, guarded together by one mutex.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*sessionState

	maxHistory    int
	ttl           time.Duration
	sweepInterval time.Duration

	done chan struct{}
	wg   sync.WaitGroup

	// now is swappable for TTL tests.
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxHistory overrides DefaultMaxHistory.
func WithMaxHistory(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepInterval overrides DefaultSweepInterval.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// NewStore creates a store and starts its sweep loop. Call Close to stop it.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions:      make(map[string]*sessionState),
		maxHistory:    DefaultMaxHistory,
		ttl:           DefaultTTL,
		sweepInterval: DefaultSweepInterval,
		done:          make(chan struct{}),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.sweepLoop()

	logging.Session("Session store started: maxHistory=%d ttl=%s sweep=%s",
		s.maxHistory, s.ttl, s.sweepInterval)
	return s
}

// Close stops the sweep loop. The store remains usable but unreaped.
func (s *Store) Close() {
	close(s.done)
	s.wg.Wait()
}

// AddMessage appends to a session, creating it on first write and refreshing
// its activity time. History beyond the retained maximum is trimmed from the
// front; the caller never sees an error.
func (s *Store) AddMessage(id, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		// Get-or-create: implicit session creation lives with the append so
		// no caller can forget an initialization step.
		sess = &sessionState{}
		s.sessions[id] = sess
		logging.SessionDebug("Session created: %s", id)
	}

	sess.history = append(sess.history, Message{Role: role, Content: content})
	sess.lastActive = s.now()

	if len(sess.history) > s.maxHistory {
		sess.history = sess.history[len(sess.history)-s.maxHistory:]
	}
}

// History returns a copy of a session's messages, oldest first. Unknown
// sessions yield an empty slice, never an error.
func (s *Store) History(id string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return []Message{}
	}
	return append([]Message(nil), sess.history...)
}

// ClearSession removes a session outright.
func (s *Store) ClearSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// SessionCount returns the number of live sessions.
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

// sweep deletes every session idle past the TTL. This and ClearSession are
// the only paths that remove a session.
func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	reaped := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastActive) > s.ttl {
			delete(s.sessions, id)
			reaped++
		}
	}

	if reaped > 0 {
		logging.Session("Swept %d expired sessions, %d remain", reaped, len(s.sessions))
	}
}
