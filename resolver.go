package alloy

// The resolver is the recursive construction engine. Recursion has no
// explicit depth bound; instead every goroutine carries a resolution chain,
// and re-entering a key already on the chain fails fast with
// CircularDependencyError rather than overflowing the stack. This also
// covers cycles among non-lifecycle components, which the validator's
// graph check does not inspect.

type resolutionState struct {
	onChain map[ComponentKey]struct{}
	path    []ComponentKey
}

func (c *Container) getResolutionState() *resolutionState {
	id := goid()
	if state, ok := c.resolutionState.Load(id); ok {
		return state.(*resolutionState)
	}
	state := c.statePool.Get().(*resolutionState)
	c.resolutionState.Store(id, state)
	return state
}

// startResolving pushes key onto the current goroutine's resolution chain.
func (c *Container) startResolving(key ComponentKey) error {
	state := c.getResolutionState()
	if _, ok := state.onChain[key]; ok {
		cycle := make([]string, 0, len(state.path)+1)
		for _, k := range state.path {
			cycle = append(cycle, keyName(k))
		}
		cycle = append(cycle, keyName(key))
		return &CircularDependencyError{Keys: cycle}
	}
	state.onChain[key] = struct{}{}
	state.path = append(state.path, key)
	return nil
}

// finishResolving pops key; the state is pooled once the chain unwinds.
func (c *Container) finishResolving(key ComponentKey) {
	state := c.getResolutionState()
	delete(state.onChain, key)
	if n := len(state.path); n > 0 && state.path[n-1] == key {
		state.path = state.path[:n-1]
	}
	if len(state.path) == 0 {
		id := goid()
		c.resolutionState.Delete(id)
		for k := range state.onChain {
			delete(state.onChain, k)
		}
		state.path = state.path[:0]
		c.statePool.Put(state)
	}
}

// resolve looks up the declaration for key under the active profile and
// materializes an instance according to its scope. scope is nil for
// container-level resolution; scoped keys then fail with ScopeError.
func (c *Container) resolve(key ComponentKey, scope *RequestScope) (any, error) {
	if err := c.startResolving(key); err != nil {
		return nil, err
	}
	defer c.finishResolving(key)

	c.mu.Lock()
	decl, err := c.registry.lookup(key, c.profile)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	switch decl.Scope {
	case ScopeSingleton:
		return c.resolveSingleton(decl)
	case ScopeTransient:
		return c.build(decl, scope)
	case ScopeScoped:
		if scope == nil {
			return nil, &ScopeError{
				Key:    keyName(key),
				Reason: "scoped component requires an active request scope",
			}
		}
		return scope.resolveScoped(decl)
	}
	return nil, &InvalidDeclarationError{Key: keyName(key), Reason: "unknown scope " + string(decl.Scope)}
}

// resolveSingleton applies first-writer-wins caching: construction may race,
// but the loser's fully built instance is discarded and the winner returned.
// A singleton's dependencies always resolve without a request scope, so a
// scoped dependency fails with ScopeError here instead of being captured
// for the container's lifetime.
func (c *Container) resolveSingleton(decl *Declaration) (any, error) {
	c.mu.Lock()
	if inst, ok := c.singletons[decl.Key]; ok {
		c.mu.Unlock()
		return inst, nil
	}
	c.mu.Unlock()

	inst, err := c.build(decl, nil)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if winner, ok := c.singletons[decl.Key]; ok {
		return winner, nil
	}
	c.singletons[decl.Key] = inst
	return inst, nil
}

// build resolves declared dependencies in order, then invokes the builder.
func (c *Container) build(decl *Declaration, scope *RequestScope) (any, error) {
	deps := make([]any, len(decl.Dependencies))
	for i, dk := range decl.Dependencies {
		dep, err := c.resolve(dk, scope)
		if err != nil {
			return nil, err
		}
		deps[i] = dep
	}

	inst, err := decl.Build(deps)
	if err != nil {
		return nil, &BuildError{Key: keyName(decl.Key), Err: err}
	}
	return inst, nil
}
