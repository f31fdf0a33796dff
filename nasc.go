// Package nasc provides a string-keyed dependency injection registry for Go.
//
// Nasc (Old Irish: "Link" or "Bond") builds objects on request and wires
// their parameters by declared type and name.
//
// Basic usage:
//
//	container := nasc.New()
//	container.MustSet(introspect.Key[*Logger](), NewLogger)
//
//	logger, err := nasc.Resolve[*Logger](container, introspect.Key[*Logger]())
package nasc

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/toutaio/toutago-nasc-container/introspect"
	"github.com/toutaio/toutago-nasc-container/registry"
)

var errNoInstance = errors.New("constructable produced no instance")

// Nasc is the dependency injection container.
//
// Registration methods are individually goroutine-safe, but resolution is
// not: a container must not be resolved from several goroutines at once.
// Use one container per goroutine or serialize access externally.
type Nasc struct {
	registry     *registry.Registry
	introspector introspect.Introspector
	logger       *zap.Logger
	metrics      *metrics
	providers    []*providerEntry

	// identifiers currently being built, outermost first
	resolving []string
}

// New creates a new Nasc container instance.
// Options can be provided to configure the container behavior.
//
// Example:
//
//	container := nasc.New()
//	// or with options:
//	container := nasc.New(nasc.WithDebug())
func New(options ...Option) *Nasc {
	n := &Nasc{
		registry:     registry.New(),
		introspector: introspect.NewReflector(),
		logger:       zap.NewNop(),
		providers:    make([]*providerEntry, 0),
	}

	for _, opt := range options {
		if err := opt(n); err != nil {
			panic(fmt.Sprintf("failed to apply option: %v", err))
		}
	}

	return n
}

// Introspector returns the introspector the container resolves with.
func (n *Nasc) Introspector() introspect.Introspector {
	return n.introspector
}

// Register catalogues a type so the container can build it without a binding.
// It requires the default Reflector (or any introspector with the same
// Register method) and returns the type's identifier.
//
// Example:
//
//	container.Register(&Service{}, introspect.WithConstructor(introspect.Fn(NewService, "logger")))
func (n *Nasc) Register(sample any, opts ...introspect.TypeOption) (string, error) {
	catalogue, ok := n.introspector.(interface {
		Register(sample any, opts ...introspect.TypeOption) string
	})
	if !ok {
		return "", &InvalidBindingError{Reason: fmt.Sprintf("introspector %T cannot catalogue types", n.introspector)}
	}
	if sample == nil {
		return "", &InvalidBindingError{Reason: "sample cannot be nil"}
	}
	return catalogue.Register(sample, opts...), nil
}

// Has reports whether id has a registered factory or names a type known to
// the introspector. It checks existence only: an interface type may report
// true and still fail in Get.
func (n *Nasc) Has(id string) bool {
	return n.registry.Has(id) || n.introspector.HasType(id)
}

// Set registers c for id.
//
// When one of c's parameters is declared with the type id, c is registered
// as a decorator of id: it receives the instance built so far and may return
// a replacement (a nil result keeps the current instance). Otherwise c
// becomes id's primary factory, replacing any previous one.
//
// Set drops any cached instance of id and applies the share flag
// (Share(true) unless given).
//
// Example:
//
//	container.Set("Logger", NewLogger)
//	container.Set("Logger", func(l *Logger) { l.Prefix = "app" }) // decorator
func (n *Nasc) Set(id string, c introspect.Constructable, opts ...SetOption) error {
	if id == "" {
		return &InvalidBindingError{Reason: "identifier cannot be empty"}
	}
	if c == nil {
		return &InvalidBindingError{ID: id, Reason: "constructable cannot be nil"}
	}

	cfg := setConfig{share: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	sig, err := n.introspector.Inspect(c)
	if err != nil {
		return &InvalidBindingError{ID: id, Reason: "cannot inspect constructable", Cause: err}
	}

	kind := registry.KindFactory
	for _, p := range sig.Params {
		if p.Type == id {
			kind = registry.KindDecorator
			break
		}
	}

	if err := n.registry.Register(&registry.Binding{ID: id, Kind: kind, Constructable: c}); err != nil {
		return &InvalidBindingError{ID: id, Reason: "cannot store binding", Cause: err}
	}
	n.SetShare(id, cfg.share)
	n.metrics.setBindings(n.registry.Len())

	n.logger.Debug("binding registered",
		zap.String("id", id),
		zap.Stringer("kind", kind),
		zap.Bool("shared", cfg.share),
		zap.String("location", sig.Location),
	)
	return nil
}

// MustSet is like Set but panics on error and returns the container
// for chaining.
//
//	container.
//	    MustSet("Logger", NewLogger).
//	    MustSet("Mailer", NewMailer, nasc.Share(false))
func (n *Nasc) MustSet(id string, c introspect.Constructable, opts ...SetOption) *Nasc {
	if err := n.Set(id, c, opts...); err != nil {
		panic(err)
	}
	return n
}

// SetShare toggles whether instances of id are cached, without touching
// its bindings. Excluding id also drops its cached instance.
func (n *Nasc) SetShare(id string, share bool) *Nasc {
	n.registry.SetShare(id, share)
	if !share {
		n.registry.Invalidate(id)
	}
	return n
}

// Get returns the instance for id.
//
// A cached instance is returned unless Fresh is given. Otherwise the
// instance is built by id's factory, or by the introspector when id names a
// known type, then passed through id's decorators in registration order and
// cached unless id is excluded with SetShare.
//
// Example:
//
//	svc, err := container.Get("Service")
//	other, err := container.Get("Service", nasc.Fresh(), nasc.WithData(map[string]any{"name": "x"}))
func (n *Nasc) Get(id string, opts ...GetOption) (any, error) {
	cfg := newGetConfig(opts)

	if !cfg.fresh {
		if instance, ok := n.registry.Cached(id); ok {
			n.metrics.cached()
			n.logger.Debug("cache hit", zap.String("id", id))
			return instance, nil
		}
	}

	for _, building := range n.resolving {
		if building == id {
			path := append(append([]string{}, n.resolving...), id)
			n.metrics.failed()
			return nil, &CyclicDependencyError{Path: path}
		}
	}

	n.resolving = append(n.resolving, id)
	defer func() {
		n.resolving = n.resolving[:len(n.resolving)-1]
	}()

	start := time.Now()
	instance, err := n.build(id, cfg.data)
	if err != nil {
		n.metrics.failed()
		n.logger.Warn("resolution failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	n.metrics.built(start)
	return instance, nil
}

// build constructs id, runs its decorators and updates the cache.
func (n *Nasc) build(id string, data map[string]any) (any, error) {
	var (
		instance any
		strategy string
		err      error
	)

	if b, ok := n.registry.Factory(id); ok {
		strategy = "factory"
		instance, err = n.construct(id, b.Constructable, nil, nil)
	} else if n.introspector.HasType(id) {
		if ctor, declared := n.introspector.Constructor(id); declared {
			strategy = "constructor"
			instance, err = n.construct(id, ctor, nil, data)
		} else {
			strategy = "instantiate"
			instance, err = n.introspector.Instantiate(id)
			if err != nil {
				err = &ResolutionError{ID: id, Context: "instantiate", Cause: err}
			}
		}
	} else {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, &ResolutionError{ID: id, Context: strategy, Cause: errNoInstance}
	}

	decorators := n.registry.Decorators(id)
	for _, d := range decorators {
		replacement, err := n.construct(id, d.Constructable, map[string]any{id: instance}, nil)
		if err != nil {
			return nil, err
		}
		if replacement != nil {
			instance = replacement
		}
	}

	if n.registry.Shared(id) {
		n.registry.Store(id, instance)
	}

	n.logger.Debug("instance built",
		zap.String("id", id),
		zap.String("strategy", strategy),
		zap.Int("decorators", len(decorators)),
	)
	return instance, nil
}

// construct resolves the arguments of c and invokes it.
func (n *Nasc) construct(id string, c introspect.Constructable, defaults, data map[string]any) (any, error) {
	args, err := n.Arguments(c, defaults, data)
	if err != nil {
		return nil, err
	}
	instance, err := n.introspector.Invoke(c, args)
	if err != nil {
		return nil, &ResolutionError{ID: id, Cause: err}
	}
	return instance, nil
}

// MustGet is like Get but panics on error.
func (n *Nasc) MustGet(id string, opts ...GetOption) any {
	instance, err := n.Get(id, opts...)
	if err != nil {
		panic(err)
	}
	return instance
}

// Call resolves the arguments of c and invokes it, returning its result.
// WithDefaults and WithData apply to c's own parameters.
//
// Example:
//
//	result, err := container.Call(introspect.Fn(func(logger *Logger, name any) string {
//	    return logger.Prefix + name.(string)
//	}, "logger", "name"), nasc.WithDefaults(map[string]any{"name": "world"}))
func (n *Nasc) Call(c introspect.Constructable, opts ...GetOption) (any, error) {
	cfg := newGetConfig(opts)
	args, err := n.Arguments(c, cfg.defaults, cfg.data)
	if err != nil {
		return nil, err
	}
	result, err := n.introspector.Invoke(c, args)
	if err != nil {
		return nil, &ResolutionError{ID: "call", Cause: err}
	}
	return result, nil
}

// IDs returns the identifiers that have a factory or decorator.
func (n *Nasc) IDs() []string {
	return n.registry.IDs()
}

// Resolve is a generic helper that calls Get and type-asserts the result.
//
//	// Instead of: v, err := c.Get("db"); db := v.(*Database)
//	// Write:      db, err := nasc.Resolve[*Database](c, "db")
func Resolve[T any](n *Nasc, id string, opts ...GetOption) (T, error) {
	var zero T
	instance, err := n.Get(id, opts...)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &ResolutionError{ID: id, Context: "type assertion", Cause: fmt.Errorf("resolved to %T, want %v", instance, reflect.TypeOf((*T)(nil)).Elem())}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](n *Nasc, id string, opts ...GetOption) T {
	typed, err := Resolve[T](n, id, opts...)
	if err != nil {
		panic(err)
	}
	return typed
}
