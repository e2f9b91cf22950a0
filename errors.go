package alloy

import (
	"fmt"
	"strings"
)

// NotFoundError reports that no declaration matches a requested key under
// the active profile.
type NotFoundError struct {
	Key     string
	Profile Profile
}

func (e *NotFoundError) Error() string {
	if e.Profile == "" {
		return fmt.Sprintf("no declaration found for %s", e.Key)
	}
	return fmt.Sprintf("no declaration found for %s under profile %q", e.Key, e.Profile)
}

// DuplicateRegistrationError reports a registration whose profile set
// overlaps an existing declaration for the same key.
type DuplicateRegistrationError struct {
	Key      string
	Profiles []Profile
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("duplicate declaration for %s: overlapping profiles %v", e.Key, e.Profiles)
}

// AmbiguousRegistrationError reports that more than one declaration matched
// a key at resolution time.
type AmbiguousRegistrationError struct {
	Key     string
	Profile Profile
	Count   int
}

func (e *AmbiguousRegistrationError) Error() string {
	return fmt.Sprintf("%d declarations match %s under profile %q", e.Count, e.Key, e.Profile)
}

// CircularDependencyError reports a dependency cycle. Keys holds the
// components that could not be ordered, in registration order.
type CircularDependencyError struct {
	Keys []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency involving: %s", strings.Join(e.Keys, ", "))
}

// CaptiveDependencyError reports a singleton that transitively depends on a
// scoped component.
type CaptiveDependencyError struct {
	Singleton string
	Scoped    string
}

func (e *CaptiveDependencyError) Error() string {
	return fmt.Sprintf("captive dependency: singleton %s depends on scoped %s", e.Singleton, e.Scoped)
}

// ScopeError reports an invalid scope operation, such as resolving a scoped
// component without an active request scope or nesting scopes.
type ScopeError struct {
	Key    string
	Reason string
}

func (e *ScopeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("scope error: %s", e.Reason)
	}
	return fmt.Sprintf("scope error for %s: %s", e.Key, e.Reason)
}

// BuildError wraps a failure from a declaration's builder function.
type BuildError struct {
	Key string
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed for %s: %v", e.Key, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// InitializationError wraps a failure from a component's Initialize call.
type InitializationError struct {
	Key string
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed for %s: %v", e.Key, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// ShutdownError wraps a failure from a component's Dispose call.
type ShutdownError struct {
	Key string
	Err error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("disposal failed for %s: %v", e.Key, e.Err)
}

func (e *ShutdownError) Unwrap() error {
	return e.Err
}

// TypeMismatchError represents a type assertion failure on a resolved
// instance.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// InvalidDeclarationError reports a malformed declaration at registration
// time, such as a nil key, nil builder, or unknown scope.
type InvalidDeclarationError struct {
	Key    string
	Reason string
}

func (e *InvalidDeclarationError) Error() string {
	return fmt.Sprintf("invalid declaration for %s: %s", e.Key, e.Reason)
}
