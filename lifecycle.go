package alloy

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrAlreadyStarted is returned by Start when a previous Start succeeded
// and no Stop has run since, even when no declaration is lifecycle-managed.
var ErrAlreadyStarted = errors.New("alloy: container already started")

// Start materializes every lifecycle-managed declaration in topological
// order and calls Initialize on each, strictly sequentially: a later
// component may legitimately observe a side effect of an earlier one's
// initialization.
//
// If initialization of the k-th component fails, or ctx is cancelled,
// components 1..k-1 are disposed in reverse order (best effort, errors
// logged, never re-raised) and the original error is returned. The
// started-lifecycle list is populated only by a fully successful Start.
//
// Start is not safe to call concurrently with itself or Stop.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	graph, err := buildDependencyGraph(c.registry, c.profile)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	order, err := graph.topoOrder()
	if err != nil {
		return err
	}

	c.log.Info("starting components",
		zap.Int("count", len(order)),
		zap.String("profile", string(c.profile)))

	started := make([]startedComponent, 0, len(order))
	for _, decl := range order {
		if err := ctx.Err(); err != nil {
			c.rollback(started)
			return err
		}

		inst, err := c.resolve(decl.Key, nil)
		if err != nil {
			c.rollback(started)
			return err
		}
		lc, ok := inst.(Lifecycle)
		if !ok {
			c.rollback(started)
			return &TypeMismatchError{Expected: "alloy.Lifecycle", Got: keyName(KeyOf(inst))}
		}

		if err := lc.Initialize(ctx); err != nil {
			c.log.Error("component initialization failed",
				zap.String("component", keyName(decl.Key)),
				zap.Error(err))
			c.rollback(started)
			return &InitializationError{Key: keyName(decl.Key), Err: err}
		}

		started = append(started, startedComponent{key: decl.Key, inst: lc})
		c.log.Info("component initialized", zap.String("component", keyName(decl.Key)))
	}

	c.mu.Lock()
	c.started = started
	c.running = true
	c.mu.Unlock()
	return nil
}

// rollback disposes the given components in reverse initialization order
// and evicts them from the singleton cache. Disposal errors are logged and
// swallowed so rollback always completes.
func (c *Container) rollback(started []startedComponent) {
	if len(started) == 0 {
		return
	}
	c.mu.Lock()
	for _, entry := range started {
		delete(c.singletons, entry.key)
	}
	c.mu.Unlock()
	c.log.Warn("rolling back initialized components", zap.Int("count", len(started)))
	ctx := context.Background()
	for i := len(started) - 1; i >= 0; i-- {
		entry := started[i]
		if err := entry.inst.Dispose(ctx); err != nil {
			c.log.Warn("rollback disposal failed",
				zap.String("component", keyName(entry.key)),
				zap.Error(err))
		}
	}
}

// Stop disposes every started component in exact reverse start order,
// sequentially, collecting disposal errors rather than stopping on the
// first. After all disposals are attempted, the collected errors are
// returned as one aggregate. Disposed singletons are evicted from the
// cache, so a later Resolve or Start builds and initializes fresh
// instances. Stop on a container that is not running is a no-op.
//
// Stop is not safe to call concurrently with itself or Start.
func (c *Container) Stop(ctx context.Context) error {
	c.mu.Lock()
	started := c.started
	c.started = nil
	c.running = false
	for _, entry := range started {
		delete(c.singletons, entry.key)
	}
	c.mu.Unlock()

	if len(started) == 0 {
		return nil
	}

	c.log.Info("stopping components", zap.Int("count", len(started)))

	var errs []error
	for i := len(started) - 1; i >= 0; i-- {
		entry := started[i]
		if err := entry.inst.Dispose(ctx); err != nil {
			c.log.Warn("component disposal failed",
				zap.String("component", keyName(entry.key)),
				zap.Error(err))
			errs = append(errs, &ShutdownError{Key: keyName(entry.key), Err: err})
			continue
		}
		c.log.Info("component disposed", zap.String("component", keyName(entry.key)))
	}
	return errors.Join(errs...)
}

// Started returns the keys of lifecycle components started by the last
// successful Start, in start order.
func (c *Container) Started() []ComponentKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ComponentKey, len(c.started))
	for i, entry := range c.started {
		out[i] = entry.key
	}
	return out
}
