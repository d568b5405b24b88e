package container

import "github.com/pkg/errors"

var (
	// ErrNotInjectable matches NotInjectableError.
	ErrNotInjectable = errors.New("container: not injectable")

	// ErrMissingDependency matches MissingDependencyError.
	ErrMissingDependency = errors.New("container: missing dependency")

	// ErrCircularDependency matches CircularDependencyError.
	ErrCircularDependency = errors.New("container: circular dependency")
)

// NotInjectableError is returned when a class carries no Injectable metadata
// and was registered without an explicit parameter list.
type NotInjectableError struct{ Path string }

// Error implements the error interface.
func (e *NotInjectableError) Error() string {
	// Example: container: not injectable: App > UserRepo
	return ErrNotInjectable.Error() + ": " + e.Path
}

// Unwrap lets errors.Is match ErrNotInjectable.
func (e *NotInjectableError) Unwrap() error { return ErrNotInjectable }

// MissingDependencyError is returned when a token resolves to no value and
// was not registered with AllowUndefined.
type MissingDependencyError struct{ Path string }

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	// Example: container: missing dependency: App > config
	return ErrMissingDependency.Error() + ": " + e.Path
}

// Unwrap lets errors.Is match ErrMissingDependency.
func (e *MissingDependencyError) Unwrap() error { return ErrMissingDependency }

// CircularDependencyError is returned when a token is requested again while
// it is still being constructed. Path lists the whole chain.
type CircularDependencyError struct{ Path string }

// Error implements the error interface.
func (e *CircularDependencyError) Error() string {
	// Example: container: circular dependency: Bar > Foo > Bar > Foo
	return ErrCircularDependency.Error() + ": " + e.Path
}

// Unwrap lets errors.Is match ErrCircularDependency.
func (e *CircularDependencyError) Unwrap() error { return ErrCircularDependency }
