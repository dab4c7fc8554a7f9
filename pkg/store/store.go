package store

import (
	"sync"

	"github.com/datawerks/dataroot/pkg/logging"
	"github.com/datawerks/dataroot/pkg/scope"
)

// Store is the redirection mapping: dataset type name to effective
// source path, or absent. It is written only through Set and Clear,
// which layer per scope with save/restore semantics: closing a scope
// restores whatever entry that scope's writes observed, so nested
// redirects of the same dataset unwind correctly. The mutex keeps
// lookups race-clean; mutation is still meant for one logical call
// stack at a time.
type Store struct {
	mu      sync.Mutex
	entries map[string]string
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]string)}
}

// Get returns the effective path for a dataset type and whether an
// override is installed.
func (s *Store) Get(dataset string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.entries[dataset]
	return path, ok
}

// Set installs path as the override for a dataset type. Under a frame
// scope, the entry observed now is restored when the scope closes;
// under the global scope the override is permanent. A closed scope
// fails the call with SCOPE_CLOSED and leaves the store untouched.
func (s *Store) Set(dataset, path string, sc *scope.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.bindRestore(dataset, sc); err != nil {
		return err
	}

	s.entries[dataset] = path
	logger := logging.GetLogger("store")
	logger.Debug().
		Str("dataset", dataset).
		Str("path", path).
		Bool("global", sc.IsGlobal()).
		Msg("Redirection installed")
	return nil
}

// Clear removes any override for a dataset type, with the same scope
// layering as Set: a frame scope restores the removed entry on close.
func (s *Store) Clear(dataset string, sc *scope.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.bindRestore(dataset, sc); err != nil {
		return err
	}

	delete(s.entries, dataset)
	logger := logging.GetLogger("store")
	logger.Debug().
		Str("dataset", dataset).
		Bool("global", sc.IsGlobal()).
		Msg("Redirection cleared")
	return nil
}

// bindRestore snapshots the current entry for dataset and registers
// its restoration on sc. Caller holds the mutex.
func (s *Store) bindRestore(dataset string, sc *scope.Scope) error {
	if sc.IsGlobal() {
		return nil
	}

	prev, had := s.entries[dataset]
	_, err := sc.Bind(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if had {
			s.entries[dataset] = prev
		} else {
			delete(s.entries, dataset)
		}
		return nil
	})
	return err
}
