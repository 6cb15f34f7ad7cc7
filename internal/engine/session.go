package engine

import (
	"sync"
	"time"

	"collections-reconciliation-service/internal/models"
)

// Session holds the debt ledger cached across interactions, so successive
// payment uploads reconcile against the same base without re-reading it.
// Replacement is an explicit mutation of this value; there is no ambient
// process-wide state. Readers always get a defensive copy, which keeps a
// cached ledger isolated from any in-flight reconciliation.
type Session struct {
	mu       sync.Mutex
	ledger   []*models.DebtRecord
	source   string
	loadedAt time.Time
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// Load caches a debt ledger in the session, replacing any previous one
func (s *Session) Load(source string, ledger []*models.DebtRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = ledger
	s.source = source
	s.loadedAt = time.Now()
}

// Replace is Load under its operator-facing name: swapping the cached
// cartera for a new upload.
func (s *Session) Replace(source string, ledger []*models.DebtRecord) {
	s.Load(source, ledger)
}

// Clear drops the cached ledger
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = nil
	s.source = ""
	s.loadedAt = time.Time{}
}

// HasLedger reports whether a ledger is cached
func (s *Session) HasLedger() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ledger) > 0
}

// Ledger returns a defensive copy of the cached ledger. Callers may read
// and discard it freely; the cached original stays immutable.
func (s *Session) Ledger() []*models.DebtRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]*models.DebtRecord, len(s.ledger))
	for i, record := range s.ledger {
		copied[i] = record.Clone()
	}
	return copied
}

// Source returns the path the cached ledger was loaded from
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// LoadedAt returns when the cached ledger was loaded
func (s *Session) LoadedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedAt
}
