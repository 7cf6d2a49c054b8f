// Package confirmation implements the two-phase approval store for
// dangerous tools (SPEC_FULL.md §4.2). It is grounded on the shape of
// the teacher's policy.PendingApproval / Store.ExpirePendingApprovals
// pair, collapsed into a single in-process store since this spec has
// no persistence layer (Non-goals, §1).
package confirmation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/airlockhq/airlock/pkg/airlockerr"
)

// DefaultTTL is the default lifetime of a pending confirmation.
const DefaultTTL = 60 * time.Second

// Pending is a single-use confirmation awaiting approval.
type Pending struct {
	ID           string
	ToolName     string
	Description  string
	Params       map[string]any
	CreatedAt    time.Time
	ExpiresAt    time.Time
	ConfirmedAt  *time.Time
}

// Store holds pending confirmations, sweeping expired entries on every
// access (SPEC_FULL.md §4.2).
type Store struct {
	mu      sync.Mutex
	entries map[string]*Pending
	now     func() time.Time
}

// New creates an empty confirmation store.
func New() *Store {
	return &Store{entries: make(map[string]*Pending), now: time.Now}
}

// NewPending builds a Pending record with a fresh ID and the default TTL.
func NewPending(toolName, description string, params map[string]any) *Pending {
	now := time.Now()
	return &Pending{
		ID:          uuid.NewString(),
		ToolName:    toolName,
		Description: description,
		Params:      params,
		CreatedAt:   now,
		ExpiresAt:   now.Add(DefaultTTL),
	}
}

// Add inserts a pending confirmation, first sweeping expired entries.
func (s *Store) Add(p *Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.entries[p.ID] = p
}

// Get returns a pending confirmation by ID, sweeping expired entries first.
func (s *Store) Get(id string) (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	p, ok := s.entries[id]
	return p, ok
}

// Consume removes and returns a pending confirmation by ID. Consuming an
// absent or expired ID returns INVALID_INPUT per SPEC_FULL.md §4.2,
// making expired entries indistinguishable from missing ones.
func (s *Store) Consume(id string) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	p, ok := s.entries[id]
	if !ok {
		return nil, airlockerr.New(airlockerr.InvalidInput, "confirmation not found or has expired")
	}
	delete(s.entries, id)
	return p, nil
}

// Cleanup drops entries whose ExpiresAt has passed.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
}

func (s *Store) sweepLocked() {
	now := s.now()
	for id, p := range s.entries {
		if !now.Before(p.ExpiresAt) {
			delete(s.entries, id)
		}
	}
}

// Confirm stamps ConfirmedAt on the pending record matching id and
// returns it, without executing the originating tool (SPEC_FULL.md
// §4.2 — the confirm tool never re-executes the original call).
func (s *Store) Confirm(id string) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	p, ok := s.entries[id]
	if !ok {
		return nil, airlockerr.New(airlockerr.InvalidInput, "confirmation not found or has expired")
	}
	now := s.now()
	p.ConfirmedAt = &now
	return p, nil
}

// FindValid returns the pending entry with the given id if it is
// non-expired, confirmed, and was created for toolName, used by a guarded
// tool to check whether it may proceed.
func (s *Store) FindValid(id, toolName string) (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	p, ok := s.entries[id]
	if !ok || p.ToolName != toolName || p.ConfirmedAt == nil {
		return nil, false
	}
	return p, true
}
