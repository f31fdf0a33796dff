package nasc

import (
	"github.com/toutaio/toutago-nasc-container/registry"
)

// Validate checks every registered factory and decorator without building
// anything: each required parameter must have a default, be optional, or
// name an identifier the container can resolve. Decorator parameters typed
// with the decorated identifier are always satisfied.
//
// Validate cannot see per-call data, so a factory parameter that only data
// would satisfy is reported. Constructors of catalogued types are not
// checked.
//
// Example:
//
//	if err := container.Validate(); err != nil {
//	    log.Fatal(err)
//	}
func (n *Nasc) Validate() error {
	var errs []error

	for _, id := range n.registry.IDs() {
		var bindings []*registry.Binding
		if b, ok := n.registry.Factory(id); ok {
			bindings = append(bindings, b)
		}
		bindings = append(bindings, n.registry.Decorators(id)...)

		for _, b := range bindings {
			sig, err := n.introspector.Inspect(b.Constructable)
			if err != nil {
				errs = append(errs, &InvalidBindingError{ID: id, Reason: "cannot inspect constructable", Cause: err})
				continue
			}
			for _, p := range sig.Params {
				if n.statically(id, b.Kind, p.Name, p.Type, p.Builtin) || p.HasDefault || p.Optional {
					continue
				}
				errs = append(errs, &ResolutionError{
					ID:      id,
					Context: b.Kind.String(),
					Cause:   &UnresolvableParameterError{Param: p.Name, Location: sig.Location},
				})
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// statically reports whether a parameter resolves from container state alone.
func (n *Nasc) statically(id string, kind registry.Kind, name, typ string, builtin bool) bool {
	if typ == "" {
		return n.Has(name)
	}
	if kind == registry.KindDecorator && typ == id {
		return true
	}
	return !builtin && n.Has(typ)
}
