// Package alloy is an inversion-of-control container: it maps component
// keys to declared builders, enforces scoping and profile-selection rules,
// and drives ordered initialization and teardown of stateful components.
package alloy

import (
	"sync"

	"go.uber.org/zap"
)

// Container owns the registry, the active profile, the singleton cache and
// the list of lifecycle-managed instances started by Start. A container is
// safe for concurrent resolution; Start and Stop assume a single caller.
type Container struct {
	mu         sync.Mutex
	registry   *registry
	profile    Profile
	singletons map[ComponentKey]any
	started    []startedComponent
	running    bool

	resolutionState sync.Map // goroutine id -> *resolutionState
	statePool       sync.Pool

	log *zap.Logger
}

// startedComponent records one successfully initialized lifecycle instance.
type startedComponent struct {
	key  ComponentKey
	inst Lifecycle
}

// Option configures a Container.
type Option func(*Container)

// WithProfile sets the active profile label. The default is DefaultProfile.
func WithProfile(p Profile) Option {
	return func(c *Container) {
		c.profile = p.normalize()
	}
}

// WithLogger sets the logger used for lifecycle events. The default is a
// no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		registry:   newRegistry(),
		profile:    DefaultProfile,
		singletons: make(map[ComponentKey]any, 32),
		statePool: sync.Pool{
			New: func() interface{} {
				return &resolutionState{
					onChain: make(map[ComponentKey]struct{}, 8),
					path:    make([]ComponentKey, 0, 8),
				}
			},
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	defaultMu        sync.Mutex
	defaultContainer *Container
)

// Default returns the process-wide container instance, created on first
// access with the profile from LoadProfile. Applications that need
// isolation should construct their own container with New and pass it
// through their entry point.
func Default() *Container {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultContainer == nil {
		defaultContainer = New(WithProfile(LoadProfile()))
	}
	return defaultContainer
}

// Reset drops the default container so the next Default call builds a
// fresh one. Intended for tests only; production code paths must never
// call it.
func Reset() {
	defaultMu.Lock()
	defaultContainer = nil
	defaultMu.Unlock()
}

// Register stores a declaration. It fails with DuplicateRegistrationError
// when an existing declaration for the same key has an overlapping profile
// set.
func (c *Container) Register(d Declaration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.register(d)
}

// RegisterInstance registers a pre-built value as a singleton declaration
// with no dependencies. Resolving key returns the identical instance.
func (c *Container) RegisterInstance(key ComponentKey, instance any) error {
	return c.Register(Declaration{
		Key:   key,
		Scope: ScopeSingleton,
		Build: func([]any) (any, error) { return instance, nil },
	})
}

// Resolve materializes an instance for key under the active profile.
// Scoped keys cannot be resolved here; use EnterScope.
func (c *Container) Resolve(key ComponentKey) (any, error) {
	return c.resolve(key, nil)
}

// Profile returns the container's active profile label.
func (c *Container) Profile() Profile {
	return c.profile
}

// Len returns the number of registered declarations.
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.len()
}

// IsEmpty reports whether no declarations have been registered.
func (c *Container) IsEmpty() bool {
	return c.Len() == 0
}

// Keys returns the distinct registered component keys in registration
// order, useful for debugging.
func (c *Container) Keys() []ComponentKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.keys()
}

// Resolve materializes an instance for T from the container and asserts
// its type.
func Resolve[T any](c *Container) (T, error) {
	var zero T
	inst, err := c.Resolve(Key[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, &TypeMismatchError{Expected: keyName(Key[T]()), Got: keyName(KeyOf(inst))}
	}
	return typed, nil
}

// ResolveScoped materializes an instance for T within an active request
// scope and asserts its type.
func ResolveScoped[T any](s *RequestScope) (T, error) {
	var zero T
	inst, err := s.Resolve(Key[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, &TypeMismatchError{Expected: keyName(Key[T]()), Got: keyName(KeyOf(inst))}
	}
	return typed, nil
}
