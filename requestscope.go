package alloy

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// RequestScope is a short-lived child of a Container. It owns its own
// scoped cache and its own started-lifecycle list; singleton lookups are
// delegated to the parent. A scope is intended for a single owner (one
// request or task) and never nests.
type RequestScope struct {
	parent *Container
	ctx    context.Context

	mu        sync.Mutex
	instances map[ComponentKey]any
	started   []startedComponent
	ended     bool
}

// EnterScope creates a new request scope backed by this container. Scoped
// lifecycle instances initialize with context.Background; use
// EnterScopeContext when a request context is available.
func (c *Container) EnterScope() (*RequestScope, error) {
	return c.EnterScopeContext(context.Background())
}

// EnterScopeContext creates a new request scope whose lifecycle
// initializations run with ctx.
func (c *Container) EnterScopeContext(ctx context.Context) (*RequestScope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return &RequestScope{
		parent:    c,
		ctx:       ctx,
		instances: make(map[ComponentKey]any, 8),
	}, nil
}

// EnterScope on a request scope is rejected: scopes never nest.
func (s *RequestScope) EnterScope() (*RequestScope, error) {
	return nil, &ScopeError{Reason: "nested scopes are not supported"}
}

// Resolve materializes an instance for key. Scoped declarations are cached
// in this scope; singleton and transient declarations behave exactly as
// they do on the parent container.
func (s *RequestScope) Resolve(key ComponentKey) (any, error) {
	s.mu.Lock()
	ended := s.ended
	s.mu.Unlock()
	if ended {
		return nil, &ScopeError{Key: keyName(key), Reason: "scope has ended"}
	}
	return s.parent.resolve(key, s)
}

// resolveScoped applies the singleton cache discipline against this scope's
// cache: check, build outside the lock, re-check before insert. The scope
// is single-owner, so a losing racer is a caller bug; its instance is
// discarded undisposed.
func (s *RequestScope) resolveScoped(decl *Declaration) (any, error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil, &ScopeError{Key: keyName(decl.Key), Reason: "scope has ended"}
	}
	if inst, ok := s.instances[decl.Key]; ok {
		s.mu.Unlock()
		return inst, nil
	}
	s.mu.Unlock()

	inst, err := s.parent.build(decl, s)
	if err != nil {
		return nil, err
	}

	var lc Lifecycle
	if decl.Lifecycle {
		var ok bool
		lc, ok = inst.(Lifecycle)
		if !ok {
			return nil, &TypeMismatchError{Expected: "alloy.Lifecycle", Got: keyName(KeyOf(inst))}
		}
		if err := lc.Initialize(s.ctx); err != nil {
			return nil, &InitializationError{Key: keyName(decl.Key), Err: err}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if winner, ok := s.instances[decl.Key]; ok {
		return winner, nil
	}
	s.instances[decl.Key] = inst
	if lc != nil {
		s.started = append(s.started, startedComponent{key: decl.Key, inst: lc})
	}
	return inst, nil
}

// Exit disposes the scoped lifecycle-managed instances created within this
// scope, in reverse creation order, collecting disposal errors rather than
// stopping on the first. Singletons are untouched; they belong to the
// parent. Exit is idempotent.
func (s *RequestScope) Exit(ctx context.Context) error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil
	}
	s.ended = true
	started := s.started
	s.started = nil
	s.instances = nil
	s.mu.Unlock()

	var errs []error
	for i := len(started) - 1; i >= 0; i-- {
		entry := started[i]
		if err := entry.inst.Dispose(ctx); err != nil {
			s.parent.log.Warn("scoped component disposal failed",
				zap.String("component", keyName(entry.key)),
				zap.Error(err))
			errs = append(errs, &ShutdownError{Key: keyName(entry.key), Err: err})
		}
	}
	return errors.Join(errs...)
}
