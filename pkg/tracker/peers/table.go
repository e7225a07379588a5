// Package peers tracks live sessions in memory.
//
// The table is the tracker's liveness authority: a user appears in search
// and host-lookup results only while a session for them is present here.
// Sessions are keyed by user name, capped at the armed capacity, and
// carry an opaque rotating token plus a last-activity timestamp that the
// reaper sweeps against.
package peers

import (
	"errors"
	"sync"
	"time"
)

// Capacity bounds accepted by Arm.
const (
	MinCapacity = 1
	MaxCapacity = 100
)

var (
	// ErrNotReady indicates the table has not been armed with a capacity yet.
	ErrNotReady = errors.New("session table not armed")

	// ErrTableFull indicates the armed capacity is reached.
	ErrTableFull = errors.New("session table full")

	// ErrSessionExists indicates the user already holds a live session.
	ErrSessionExists = errors.New("session already exists")

	// ErrNoSession indicates no live session matched the (name, token) pair.
	ErrNoSession = errors.New("no such session")

	// ErrCapacityRange indicates the requested capacity is outside
	// [MinCapacity, MaxCapacity].
	ErrCapacityRange = errors.New("capacity out of range")
)

// Session is one live peer session.
type Session struct {
	Name       string
	Token      string
	IP         string
	Port       int
	LastActive time.Time
}

// Table holds the live sessions. The zero value is unarmed; every
// session-creating call fails with ErrNotReady until Arm succeeds.
type Table struct {
	mu       sync.Mutex
	capacity int
	sessions map[string]*Session
}

// NewTable returns an empty, unarmed table.
func NewTable() *Table {
	return &Table{
		sessions: make(map[string]*Session),
	}
}

// Arm sets the session capacity and opens the table for logins. Re-arming
// adjusts the cap without touching live sessions; a cap below the current
// occupancy only blocks new logins.
func (t *Table) Arm(capacity int) error {
	if capacity < MinCapacity || capacity > MaxCapacity {
		return ErrCapacityRange
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.capacity = capacity
	return nil
}

// Ready reports whether the table has been armed.
func (t *Table) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.capacity > 0
}

// Capacity returns the armed capacity, zero if unarmed.
func (t *Table) Capacity() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.capacity
}

// Len returns the number of live sessions.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Add creates a session for the user and returns its freshly issued token.
func (t *Table) Add(name, ip string, port int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.capacity == 0 {
		return "", ErrNotReady
	}
	if _, ok := t.sessions[name]; ok {
		return "", ErrSessionExists
	}
	if len(t.sessions) >= t.capacity {
		return "", ErrTableFull
	}

	token, err := t.issueTokenLocked()
	if err != nil {
		return "", err
	}
	t.sessions[name] = &Session{
		Name:       name,
		Token:      token,
		IP:         ip,
		Port:       port,
		LastActive: time.Now(),
	}
	return token, nil
}

// Remove drops the user's session if the token matches.
func (t *Table) Remove(name, token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[name]
	if !ok || s.Token != token {
		return false
	}
	delete(t.sessions, name)
	return true
}

// VerifyActive reports whether the (name, token) pair identifies a live
// session.
func (t *Table) VerifyActive(name, token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[name]
	return ok && s.Token == token
}

// Touch refreshes the session's activity timestamp.
func (t *Table) Touch(name, token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[name]
	if !ok || s.Token != token {
		return false
	}
	s.LastActive = time.Now()
	return true
}

// Rotate validates the (name, token) pair, records the announced endpoint
// and swaps in a new token, which it returns. The old token is dead on
// return.
func (t *Table) Rotate(name, token, ip string, port int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[name]
	if !ok || s.Token != token {
		return "", ErrNoSession
	}

	fresh, err := t.issueTokenLocked()
	if err != nil {
		return "", err
	}
	s.Token = fresh
	s.IP = ip
	s.Port = port
	s.LastActive = time.Now()
	return fresh, nil
}

// Get returns a copy of the user's session.
func (t *Table) Get(name string) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[name]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// IsLive reports whether the user holds a session, regardless of token.
func (t *Table) IsLive(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[name]
	return ok
}

// Snapshot returns a copy of every live session.
func (t *Table) Snapshot() []Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, *s)
	}
	return out
}

// SweepIdle evicts every session whose last activity is older than
// threshold relative to now, returning the evicted sessions.
func (t *Table) SweepIdle(now time.Time, threshold time.Duration) []Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	var evicted []Session
	for name, s := range t.sessions {
		if now.Sub(s.LastActive) > threshold {
			evicted = append(evicted, *s)
			delete(t.sessions, name)
		}
	}
	return evicted
}
