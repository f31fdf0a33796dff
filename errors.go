package nasc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrContainer is the root of every error returned by the container.
// All error types below match it with errors.Is.
var ErrContainer = errors.New("nasc: container error")

// NotFoundError is returned when an identifier has no binding and does not
// name a type the introspector can build.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("identifier %q is not bound and is not a known type. Did you forget to register it with Set()?", e.ID)
}

// Is reports whether target is ErrContainer.
func (e *NotFoundError) Is(target error) bool { return target == ErrContainer }

// UnresolvableParameterError is returned when a required parameter could not
// be satisfied by any resolution step.
type UnresolvableParameterError struct {
	Param    string
	Location string
}

func (e *UnresolvableParameterError) Error() string {
	return fmt.Sprintf("unable to resolve a value for parameter %q at %s", e.Param, e.Location)
}

// Is reports whether target is ErrContainer.
func (e *UnresolvableParameterError) Is(target error) bool { return target == ErrContainer }

// CyclicDependencyError is returned when an identifier is requested again
// while it is still being built.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Path) == 0 {
		return "cyclic dependency detected"
	}
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Path, " -> "))
}

// Is reports whether target is ErrContainer.
func (e *CyclicDependencyError) Is(target error) bool { return target == ErrContainer }

// InvalidBindingError is returned when a binding cannot be registered.
type InvalidBindingError struct {
	ID     string
	Reason string
	Cause  error
}

func (e *InvalidBindingError) Error() string {
	msg := "invalid binding"
	if e.ID != "" {
		msg = fmt.Sprintf("invalid binding for %q", e.ID)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", msg, e.Reason)
}

// Unwrap returns the underlying cause error.
func (e *InvalidBindingError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrContainer.
func (e *InvalidBindingError) Is(target error) bool { return target == ErrContainer }

// ResolutionError is returned when a constructable fails while building an
// identifier: it returned an error, produced no value, or could not be
// invoked with the resolved arguments.
type ResolutionError struct {
	ID      string
	Context string
	Cause   error
}

func (e *ResolutionError) Error() string {
	contextStr := ""
	if e.Context != "" {
		contextStr = fmt.Sprintf(": %s", e.Context)
	}

	causeStr := ""
	if e.Cause != nil {
		causeStr = fmt.Sprintf(": %v", e.Cause)
	}

	return fmt.Sprintf("failed to resolve %q%s%s", e.ID, contextStr, causeStr)
}

// Unwrap returns the underlying cause error.
func (e *ResolutionError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrContainer.
func (e *ResolutionError) Is(target error) bool { return target == ErrContainer }

// ValidationError collects the problems found by Validate.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation failed: %v", e.Errors[0])
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		b.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return b.String()
}

func (e *ValidationError) Unwrap() []error {
	return e.Errors
}

// Is reports whether target is ErrContainer.
func (e *ValidationError) Is(target error) bool { return target == ErrContainer }
