package alloy

// BuildFunc constructs an instance from its already-resolved dependencies.
// deps holds one resolved instance per entry in Declaration.Dependencies,
// in the same order.
type BuildFunc func(deps []any) (any, error)

// Declaration is one buildable entry in the registry: what can be built,
// how, and under which conditions. Declarations are created once during
// registration and are immutable afterwards.
type Declaration struct {
	// Key is the requestable identity of this component.
	Key ComponentKey

	// Scope selects the caching policy for resolved instances.
	Scope Scope

	// Profiles restricts the declaration to the named environments. An
	// empty set or ProfileAll matches every active profile.
	Profiles []Profile

	// Dependencies lists the keys resolved before Build is invoked.
	Dependencies []ComponentKey

	// Build constructs the instance from resolved dependencies.
	Build BuildFunc

	// Lifecycle marks the component for ordered Initialize/Dispose calls
	// driven by Start and Stop. The built instance must implement Lifecycle.
	Lifecycle bool
}

func (d *Declaration) validate() error {
	if d.Key == nil {
		return &InvalidDeclarationError{Key: "<nil>", Reason: "nil key"}
	}
	if d.Build == nil {
		return &InvalidDeclarationError{Key: keyName(d.Key), Reason: "nil builder"}
	}
	if !d.Scope.valid() {
		return &InvalidDeclarationError{Key: keyName(d.Key), Reason: "unknown scope " + string(d.Scope)}
	}
	return nil
}
