// Package tokenstore keeps the set of access tokens that were revoked before
// their natural expiry.
//
// Entries are forgotten once the token would have expired anyway, so memory is
// bounded by the number of tokens that are revoked but still unexpired. The
// store lives in process memory only: a restart forgets every revocation.
package tokenstore

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval is how often Run purges lapsed entries.
const DefaultSweepInterval = time.Minute

// Status is the result of a single revocation lookup.
type Status int

const (
	// NotRevoked means the token was never revoked (or its entry was already purged).
	NotRevoked Status = iota
	// Revoked means the token is revoked and has not yet reached its expiry.
	Revoked
	// Lapsed means the token was revoked but its expiry has passed. The entry
	// is removed by the lookup that observes it.
	Lapsed
)

func (s Status) String() string {
	switch s {
	case Revoked:
		return "revoked"
	case Lapsed:
		return "lapsed"
	default:
		return "not_revoked"
	}
}

// Store is a mutex-guarded map from token string to the token's expiry.
type Store struct {
	mu       sync.Mutex
	entries  map[string]time.Time
	now      func() time.Time
	interval time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSweepInterval overrides DefaultSweepInterval. Non-positive values are ignored.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:  make(map[string]time.Time),
		now:      time.Now,
		interval: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revoke records token as revoked until expiresAt. Empty tokens and zero
// expiries are ignored. Revoking again overwrites the recorded expiry.
func (s *Store) Revoke(token string, expiresAt time.Time) {
	if token == "" || expiresAt.IsZero() {
		return
	}
	s.mu.Lock()
	s.entries[token] = expiresAt
	s.mu.Unlock()
}

// Lookup reports the revocation status of token and purges the entry when it
// has lapsed.
func (s *Store) Lookup(token string) Status {
	if token == "" {
		return NotRevoked
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.entries[token]
	if !ok {
		return NotRevoked
	}
	if lapsed(s.now(), expiresAt) {
		delete(s.entries, token)
		return Lapsed
	}
	return Revoked
}

// IsRevoked reports whether token is currently revoked.
func (s *Store) IsRevoked(token string) bool {
	return s.Lookup(token) == Revoked
}

// Sweep removes every lapsed entry and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for token, expiresAt := range s.entries {
		if lapsed(now, expiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, lapsed or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run sweeps the store on every interval tick until ctx is done. onSweep, if
// non-nil, receives the number of entries removed by each pass.
func (s *Store) Run(ctx context.Context, onSweep func(removed int)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := s.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// lapsed is the single expiry predicate shared by Lookup and Sweep.
func lapsed(now, expiresAt time.Time) bool {
	return now.After(expiresAt)
}
