package alloy

// Validate runs the static checks once, against the full registry, before
// any resolution: every declared dependency must be resolvable under the
// active profile, no singleton may transitively depend on a scoped
// component, and the lifecycle dependency graph must be acyclic. Structural
// problems are detected here, eagerly, rather than discovered mid-request.
func (c *Container) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.registry.active(c.profile)

	// Every dependency key must resolve to exactly one declaration.
	for _, d := range active {
		for _, dep := range d.Dependencies {
			if _, err := c.registry.lookup(dep, c.profile); err != nil {
				return err
			}
		}
	}

	// Captive-dependency check: walk each singleton's transitive
	// dependencies looking for a scoped declaration.
	for _, d := range active {
		if d.Scope != ScopeSingleton {
			continue
		}
		if captive := c.findCaptive(d.Key, make(map[ComponentKey]struct{})); captive != nil {
			return &CaptiveDependencyError{
				Singleton: keyName(d.Key),
				Scoped:    keyName(captive),
			}
		}
	}

	// Build the lifecycle graph and order it purely to fail fast on
	// cycles, even before Start is called.
	graph, err := buildDependencyGraph(c.registry, c.profile)
	if err != nil {
		return err
	}
	if _, err := graph.topoOrder(); err != nil {
		return err
	}
	return nil
}

// findCaptive returns the first scoped key transitively reachable from
// key, or nil. visited terminates walks over cyclic declarations; cycles
// are reported by the resolver and the graph check, not here.
func (c *Container) findCaptive(key ComponentKey, visited map[ComponentKey]struct{}) ComponentKey {
	if _, ok := visited[key]; ok {
		return nil
	}
	visited[key] = struct{}{}

	decl, err := c.registry.lookup(key, c.profile)
	if err != nil {
		return nil
	}
	for _, dep := range decl.Dependencies {
		depDecl, err := c.registry.lookup(dep, c.profile)
		if err != nil {
			continue
		}
		if depDecl.Scope == ScopeScoped {
			return dep
		}
		if captive := c.findCaptive(dep, visited); captive != nil {
			return captive
		}
	}
	return nil
}
