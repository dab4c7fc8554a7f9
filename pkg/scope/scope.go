package scope

import (
	stderrors "errors"
	"sync"

	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/logging"
)

// Teardown releases one resource bound to a scope.
type Teardown func() error

// Scope is a lifetime token. A scope from New is closed by the caller
// (typically with defer) and runs its teardowns in reverse binding
// order, each exactly once. The global scope never runs teardowns
// automatically; resources bound to it outlive the process's interest
// in them and are cleaned up manually.
type Scope struct {
	mu       sync.Mutex
	global   bool
	closed   bool
	bindings []*Binding
}

var globalScope = &Scope{global: true}

// New returns a scope tied to the calling frame. Close it with defer:
//
//	sc := scope.New()
//	defer sc.Close()
func New() *Scope {
	return &Scope{}
}

// Global returns the process-lifetime scope. Its Close is a no-op and
// its teardowns never run automatically.
func Global() *Scope {
	return globalScope
}

// IsGlobal reports whether this is the process-lifetime scope.
func (s *Scope) IsGlobal() bool {
	return s.global
}

// Bind registers a teardown with the scope and returns its handle.
// The handle can release the resource early; the scope's Close skips
// released bindings. Binding to a closed scope fails with
// SCOPE_CLOSED. For the global scope the teardown is never invoked
// automatically, only via the returned handle.
func (s *Scope) Bind(teardown Teardown) (*Binding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New(errors.ErrScopeClosed, "cannot bind to a closed scope")
	}

	b := &Binding{teardown: teardown}
	if !s.global {
		s.bindings = append(s.bindings, b)
	}
	return b, nil
}

// Close runs every pending teardown in reverse binding order, each
// exactly once, and returns their errors joined. A second Close is a
// no-op, as is closing the global scope.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.global || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	bindings := s.bindings
	s.bindings = nil
	s.mu.Unlock()

	logger := logging.GetLogger("scope")
	logger.Trace().Int("bindings", len(bindings)).Msg("Closing scope")

	var errs []error
	for i := len(bindings) - 1; i >= 0; i-- {
		if err := bindings[i].Release(); err != nil {
			logger.Error().Err(err).Msg("Teardown failed")
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Binding is the handle for one bound resource. Release runs the
// teardown immediately; afterwards scope teardown skips it.
type Binding struct {
	mu       sync.Mutex
	done     bool
	teardown Teardown
}

// Release runs the teardown now, exactly once. Any further Release, or
// a scope Close after it, is a no-op.
func (b *Binding) Release() error {
	b.mu.Lock()
	if b.done {
		b.mu.Unlock()
		return nil
	}
	b.done = true
	teardown := b.teardown
	b.teardown = nil
	b.mu.Unlock()

	if teardown == nil {
		return nil
	}
	return teardown()
}

// Released reports whether the teardown already ran.
func (b *Binding) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}
