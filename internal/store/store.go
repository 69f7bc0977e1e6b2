// Package store holds the active dataset and its engine configuration
// as an immutable snapshot behind an atomic pointer swap. Readers always
// observe a consistent dataset/config pair; writers replace the whole
// snapshot.
package store

import (
	"sync"
	"time"

	"marksight/pkg/contracts/domain"
)

// State is one immutable snapshot of everything a pipeline run needs.
// Fields must not be mutated after publication.
type State struct {
	Dataset  *domain.Dataset
	Sections domain.SectionConfig
	Credits  domain.CreditConfig

	// Version increases on every replacement. It is reported in dataset
	// metadata and health output; cache keys are derived from the
	// snapshot's content (dataset hash plus configs), not from Version.
	Version   int64
	UpdatedAt time.Time
}

// Store publishes State snapshots.
type Store struct {
	mu    sync.RWMutex
	state *State
}

// New creates an empty store. Snapshot returns false until a dataset is
// loaded.
func New() *Store {
	return &Store{}
}

// Snapshot returns the current state. The returned pointer is shared;
// callers must treat it as read-only.
func (s *Store) Snapshot() (*State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil || s.state.Dataset == nil {
		return nil, false
	}
	return s.state, true
}

// ReplaceDataset installs a new dataset, keeping the current section and
// credit configuration. Returns the new version.
func (s *Store) ReplaceDataset(dataset domain.Dataset) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.nextLocked()
	next.Dataset = &dataset
	s.state = next
	return next.Version
}

// SetSections replaces the section configuration. Returns the new
// version.
func (s *Store) SetSections(cfg domain.SectionConfig) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.nextLocked()
	next.Sections = cfg
	s.state = next
	return next.Version
}

// SetCredits replaces the credit configuration. A nil map clears it,
// disabling SGPA computation. Returns the new version.
func (s *Store) SetCredits(cfg domain.CreditConfig) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.nextLocked()
	next.Credits = cfg
	s.state = next
	return next.Version
}

// nextLocked copies the current state into a fresh snapshot with a
// bumped version. Caller holds the write lock.
func (s *Store) nextLocked() *State {
	next := &State{Version: 1, UpdatedAt: time.Now()}
	if s.state != nil {
		next.Dataset = s.state.Dataset
		next.Sections = s.state.Sections
		next.Credits = s.state.Credits
		next.Version = s.state.Version + 1
	}
	return next
}
