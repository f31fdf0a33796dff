package nasc

import (
	"go.uber.org/zap"

	"github.com/toutaio/toutago-nasc-container/introspect"
)

// Arguments resolves every parameter of c, in declaration order.
//
// defaults holds override values keyed by parameter name (for untyped
// parameters) or by type identifier (for typed parameters). data holds
// per-call values keyed by parameter name, used for typed parameters whose
// declared type the value satisfies.
//
// Each parameter takes the first value found in this order:
//
//  1. defaults[name], for an untyped parameter
//  2. defaults[type], for a typed parameter
//  3. Get(name), for an untyped parameter whose name Has reports
//  4. Get(type), for a typed non-builtin parameter whose type Has reports,
//     kept only when the instance satisfies the type
//  5. data[name], for a typed parameter, when the value satisfies the type
//  6. the declared default
//  7. nil, for an optional parameter
//
// A required parameter with no value fails with UnresolvableParameterError.
func (n *Nasc) Arguments(c introspect.Constructable, defaults, data map[string]any) ([]any, error) {
	sig, err := n.introspector.Inspect(c)
	if err != nil {
		return nil, &InvalidBindingError{Reason: "cannot inspect constructable", Cause: err}
	}

	args := make([]any, 0, len(sig.Params))
	for _, p := range sig.Params {
		v, step, err := n.resolveParam(p, defaults, data)
		if err != nil {
			return nil, err
		}
		if step == "" {
			return nil, &UnresolvableParameterError{Param: p.Name, Location: sig.Location}
		}
		n.logger.Debug("parameter resolved",
			zap.String("param", p.Name),
			zap.String("type", p.Type),
			zap.String("step", step),
		)
		args = append(args, v)
	}
	return args, nil
}

// resolveParam returns the value of p and the step that produced it.
// An empty step means no step applied.
func (n *Nasc) resolveParam(p introspect.Param, defaults, data map[string]any) (any, string, error) {
	if !p.Typed() {
		if v, ok := defaults[p.Name]; ok {
			return v, "default-by-name", nil
		}
		if n.Has(p.Name) {
			v, err := n.Get(p.Name)
			if err != nil {
				return nil, "", err
			}
			return v, "container-by-name", nil
		}
	} else {
		if v, ok := defaults[p.Type]; ok {
			return v, "default-by-type", nil
		}
		if !p.Builtin && n.Has(p.Type) {
			v, err := n.Get(p.Type)
			if err != nil {
				return nil, "", err
			}
			if n.introspector.Satisfies(v, p.Type) {
				return v, "container-by-type", nil
			}
			n.logger.Debug("container value rejected",
				zap.String("param", p.Name),
				zap.String("type", p.Type),
			)
		}
		if v, ok := data[p.Name]; ok && n.introspector.Satisfies(v, p.Type) {
			return v, "data", nil
		}
	}

	if p.HasDefault {
		return p.Default, "declared-default", nil
	}
	if p.Optional {
		return nil, "optional", nil
	}
	return nil, "", nil
}
