package alloy

import "context"

// Lifecycle is implemented by components that require explicit ordered
// startup and teardown in addition to plain construction.
type Lifecycle interface {
	// Initialize is called once, in dependency order, before the component
	// is considered started. It may perform I/O and should honor ctx.
	Initialize(ctx context.Context) error

	// Dispose releases resources held by the component. It is called in
	// reverse initialization order during shutdown and rollback.
	Dispose(ctx context.Context) error
}

// Scope defines the lifetime and sharing behavior of a resolved component.
type Scope string

// Available component scopes.
const (
	// ScopeSingleton shares a single instance across the container lifetime.
	ScopeSingleton Scope = "singleton"
	// ScopeTransient creates a new instance for each resolution.
	ScopeTransient Scope = "transient"
	// ScopeScoped shares an instance within one request scope.
	ScopeScoped Scope = "scoped"
)

func (s Scope) valid() bool {
	switch s {
	case ScopeSingleton, ScopeTransient, ScopeScoped:
		return true
	}
	return false
}
