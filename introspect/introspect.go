// Package introspect describes constructables to the container.
//
// Go reflection reports parameter types but not parameter names, defaults or
// optionality. The container therefore never calls reflect directly: it asks
// an Introspector for a Signature and lets the Introspector invoke the
// constructable. Reflector is the reflect-based implementation; tests can
// substitute a fake with synthetic signatures.
package introspect

import "reflect"

// Constructable is anything an Introspector can describe and invoke:
// a *Func descriptor, a bare Go function, or whatever a custom
// Introspector understands.
type Constructable interface{}

// Param describes one declared parameter of a constructable.
type Param struct {
	// Name is the parameter name used for name-keyed lookups.
	Name string

	// Type is the declared type identifier. Empty when the parameter
	// carries no type hint (a Go parameter of type any).
	Type string

	// Builtin marks predeclared basic types (bool, numeric, string).
	// Builtin parameters are never resolved through the container by type.
	Builtin bool

	// HasDefault reports whether Default holds a usable value.
	HasDefault bool
	Default    any

	// Optional parameters fall back to an absent value instead of failing.
	Optional bool
}

// Typed reports whether the parameter has a declared type.
func (p Param) Typed() bool {
	return p.Type != ""
}

// Signature is the ordered parameter list of a constructable plus
// a human-readable location used in diagnostics.
type Signature struct {
	Params   []Param
	Location string
}

// Introspector is the capability the container uses to look inside
// constructables and types.
type Introspector interface {
	// Inspect returns the signature of c.
	Inspect(c Constructable) (*Signature, error)

	// Invoke calls c with args, one per Signature param, in order.
	// A nil result means the constructable produced no value.
	Invoke(c Constructable, args []any) (any, error)

	// HasType reports whether name is a type the introspector knows.
	// Existence only: an interface type may report true and still fail
	// in Instantiate.
	HasType(name string) bool

	// Constructor returns the declared constructor of a known type.
	// ok is false when the type has none.
	Constructor(name string) (c Constructable, ok bool)

	// Instantiate builds a known type with no arguments.
	Instantiate(name string) (any, error)

	// Satisfies reports whether v is an instance of the named type.
	Satisfies(v any, typeName string) bool
}

// NameOf returns the identifier for a Go type.
//
// Pointers are dereferenced, named types become "pkgpath.Name",
// predeclared types keep their name and unnamed composite types use
// their String form.
//
//	introspect.NameOf(reflect.TypeOf(&Logger{})) // "example.com/app.Logger"
//	introspect.NameOf(reflect.TypeOf(0))         // "int"
func NameOf(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr && t.Name() == "" {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// Key returns the identifier of T.
//
//	container.Set(introspect.Key[*Logger](), NewLogger)
func Key[T any]() string {
	return NameOf(reflect.TypeOf((*T)(nil)).Elem())
}

// IDOf returns the identifier of the dynamic type of v. Interface types can
// be named with a nil pointer, as in IDOf((*Store)(nil)).
func IDOf(v any) string {
	return NameOf(reflect.TypeOf(v))
}

// isBuiltin reports whether t is a predeclared basic type.
func isBuiltin(t reflect.Type) bool {
	if t.PkgPath() != "" {
		return false
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// isUntyped reports whether t is the empty interface.
func isUntyped(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0 && t.Name() == ""
}
