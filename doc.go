// Package nasc provides a string-keyed dependency injection registry for Go.
//
// Nasc (Old Irish: "Link" or "Bond") produces fully constructed instances on
// request. Given an identifier it either runs the registered factory or
// builds a catalogued type, resolving each parameter of the factory or
// constructor from the container by declared type and name.
//
// # Features
//
//   - String identifiers, derived from Go types with introspect.Key
//   - Factories and decorators registered with one Set call
//   - Layered parameter resolution: overrides, container, per-call data,
//     declared defaults, optional parameters
//   - Per-identifier instance cache with opt-out (SetShare)
//   - Cyclic dependency detection
//   - Service providers for modular bootstrap
//   - zap logging and Prometheus metrics
//
// # Quick Start
//
//	container := nasc.New()
//	container.MustSet(introspect.Key[*Logger](), NewLogger)
//	svc, err := nasc.Resolve[*Service](container, introspect.Key[*Service]())
//
// # Describing Functions
//
// Reflection does not expose parameter names or defaults, so functions that
// need them are described with introspect.Fn:
//
//	container.MustSet("mailer", introspect.Fn(NewMailer, "logger", "host").
//	    Default("host", "localhost"))
//
// A parameter of type any has no type hint and is resolved by its name.
//
// # Decorators
//
// A constructable with a parameter typed exactly as the identifier it is set
// for is a decorator. It runs after construction and may return a
// replacement; a nil result keeps the current instance:
//
//	container.MustSet(introspect.Key[*Logger](), func(l *Logger) *Logger {
//	    return l.With("component", "api")
//	})
//
// # Types Without Bindings
//
// Catalogued types are built without a binding, through their declared
// constructor or as a zero value:
//
//	container.Register(&Service{}, introspect.WithConstructor(NewService))
//
// # Caching
//
// Instances are cached per identifier. Get(id, Fresh()) rebuilds, and
// SetShare(id, false) disables caching for id and drops its cached
// instance. Cached instances ignore WithData values.
//
// # Error Handling
//
// Every error matches ErrContainer with errors.Is. Use errors.As for
// NotFoundError, UnresolvableParameterError, CyclicDependencyError,
// ResolutionError and InvalidBindingError.
//
// # Thread Safety
//
// Resolution is not safe for concurrent use. Serialize access to a container
// or use one container per goroutine.
package nasc
