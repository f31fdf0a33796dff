package introspect

import (
	"fmt"
	"reflect"
)

// Func describes a Go function as a constructable.
//
// Reflection cannot recover parameter names, so they are supplied
// positionally. Parameters without a supplied name are called arg0, arg1...
//
// Example:
//
//	introspect.Fn(NewMailer, "logger", "host", "port").
//	    Default("host", "localhost").
//	    Default("port", 25)
type Func struct {
	fn       any
	names    []string
	defaults map[string]any
	optional map[string]bool
	err      error
}

// Fn wraps fn with positional parameter names.
func Fn(fn any, names ...string) *Func {
	return &Func{
		fn:       fn,
		names:    names,
		defaults: make(map[string]any),
		optional: make(map[string]bool),
	}
}

// Method describes the method name of recv's type as a constructable.
// The method is invoked as a method expression, so its first parameter
// is the receiver and names[0] names it.
//
//	introspect.Method((*Cache)(nil), "WithTTL", "cache", "ttl")
func Method(recv any, name string, names ...string) *Func {
	t := reflect.TypeOf(recv)
	if t == nil {
		f := Fn(nil, names...)
		f.err = fmt.Errorf("method %s: receiver cannot be nil", name)
		return f
	}
	m, ok := t.MethodByName(name)
	if !ok {
		f := Fn(nil, names...)
		f.err = fmt.Errorf("method %s not found on %v", name, t)
		return f
	}
	return Fn(m.Func.Interface(), names...)
}

// Default sets the value used when the named parameter cannot be resolved.
func (f *Func) Default(name string, value any) *Func {
	f.defaults[name] = value
	return f
}

// Optional marks the named parameter as optional: when it cannot be
// resolved and has no default it receives its zero value.
func (f *Func) Optional(name string) *Func {
	f.optional[name] = true
	return f
}

// Target returns the wrapped function.
func (f *Func) Target() any {
	return f.fn
}

func (f *Func) paramName(i int) string {
	if i < len(f.names) && f.names[i] != "" {
		return f.names[i]
	}
	return fmt.Sprintf("arg%d", i)
}

// asFunc normalises a constructable into a *Func.
func asFunc(c Constructable) (*Func, error) {
	switch v := c.(type) {
	case nil:
		return nil, fmt.Errorf("constructable cannot be nil")
	case *Func:
		if v == nil {
			return nil, fmt.Errorf("constructable cannot be nil")
		}
		if v.err != nil {
			return nil, v.err
		}
		if v.fn == nil {
			return nil, fmt.Errorf("constructable wraps a nil function")
		}
		if reflect.TypeOf(v.fn).Kind() != reflect.Func {
			return nil, fmt.Errorf("constructable must be a function, got %T", v.fn)
		}
		return v, nil
	default:
		if reflect.TypeOf(c).Kind() != reflect.Func {
			return nil, fmt.Errorf("constructable must be a function, got %T", c)
		}
		if reflect.ValueOf(c).IsNil() {
			return nil, fmt.Errorf("constructable cannot be a nil function")
		}
		return Fn(c), nil
	}
}
