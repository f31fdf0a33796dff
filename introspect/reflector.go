package introspect

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"
)

// typeEntry is a catalogued type and its optional constructor.
type typeEntry struct {
	typ         reflect.Type
	constructor Constructable
}

// TypeOption configures a catalogued type.
type TypeOption func(*typeEntry)

// WithConstructor declares the constructor used to build a catalogued type.
// Without one the type is instantiated with no arguments.
func WithConstructor(c Constructable) TypeOption {
	return func(e *typeEntry) {
		e.constructor = c
	}
}

// Reflector is the reflect-based Introspector.
//
// Go cannot look a type up by name at runtime, so the types the container may
// build without a binding are catalogued explicitly with Register.
type Reflector struct {
	mu sync.RWMutex

	// identifier → catalogued type
	types map[string]*typeEntry

	// identifier → type seen in an inspected signature, used by Satisfies
	seen map[string]reflect.Type

	shapes *shapeCache
}

// NewReflector creates an empty Reflector.
func NewReflector() *Reflector {
	return &Reflector{
		types:  make(map[string]*typeEntry),
		seen:   make(map[string]reflect.Type),
		shapes: newShapeCache(),
	}
}

// Register catalogues the type of sample and returns its identifier.
// Interfaces are named with a nil pointer: Register((*Store)(nil)).
//
// Example:
//
//	r.Register(&Service{}, introspect.WithConstructor(introspect.Fn(NewService, "logger")))
func (r *Reflector) Register(sample any, opts ...TypeOption) string {
	t := reflect.TypeOf(sample)
	if t == nil {
		panic("introspect: cannot register a nil sample")
	}
	for t.Kind() == reflect.Ptr && t.Name() == "" {
		t = t.Elem()
	}

	entry := &typeEntry{typ: t}
	for _, opt := range opts {
		opt(entry)
	}

	name := NameOf(t)
	r.mu.Lock()
	r.types[name] = entry
	r.seen[name] = t
	r.mu.Unlock()
	return name
}

// HasType reports whether name was catalogued.
func (r *Reflector) HasType(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[name]
	return ok
}

// Constructor returns the declared constructor of a catalogued type.
func (r *Reflector) Constructor(name string) (Constructable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.types[name]
	if !ok || entry.constructor == nil {
		return nil, false
	}
	return entry.constructor, true
}

// Instantiate returns a pointer to a new zero value of a catalogued type.
func (r *Reflector) Instantiate(name string) (any, error) {
	r.mu.RLock()
	entry, ok := r.types[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("type %s is not registered", name)
	}
	if entry.typ.Kind() == reflect.Interface {
		return nil, fmt.Errorf("cannot instantiate interface %s", name)
	}
	return reflect.New(entry.typ).Interface(), nil
}

// Satisfies reports whether v is an instance of the named type: the same
// type (or a pointer to it), or an implementation when the name denotes an
// interface seen by this Reflector.
func (r *Reflector) Satisfies(v any, typeName string) bool {
	if v == nil {
		return false
	}
	vt := reflect.TypeOf(v)
	if NameOf(vt) == typeName {
		return true
	}

	r.mu.RLock()
	t, ok := r.seen[typeName]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return vt.AssignableTo(t) || vt.AssignableTo(reflect.PointerTo(t))
}

// Inspect returns the signature of c. Parameters of type any are untyped;
// a variadic last parameter is optional and typed by its element.
func (r *Reflector) Inspect(c Constructable) (*Signature, error) {
	f, err := asFunc(c)
	if err != nil {
		return nil, err
	}

	fv := reflect.ValueOf(f.fn)
	shape, err := r.shapes.get(fv.Type())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location(fv), err)
	}

	sig := &Signature{
		Params:   make([]Param, len(shape.in)),
		Location: location(fv),
	}
	for i, in := range shape.in {
		variadic := shape.variadic && i == len(shape.in)-1
		if variadic {
			in = in.Elem()
		}

		p := Param{Name: f.paramName(i)}
		if !isUntyped(in) {
			p.Type = NameOf(in)
			p.Builtin = isBuiltin(in)
			r.remember(p.Type, in)
		}
		if def, ok := f.defaults[p.Name]; ok {
			p.HasDefault = true
			p.Default = def
		}
		p.Optional = variadic || f.optional[p.Name]
		sig.Params[i] = p
	}
	return sig, nil
}

func (r *Reflector) remember(name string, t reflect.Type) {
	for t.Kind() == reflect.Ptr && t.Name() == "" {
		t = t.Elem()
	}
	r.mu.Lock()
	if _, ok := r.seen[name]; !ok {
		r.seen[name] = t
	}
	r.mu.Unlock()
}

// Invoke calls c with args. Arguments are adapted to the declared parameter
// types: nil becomes the zero value, pointers are dereferenced for value
// parameters and basic kinds are converted. A nil entry for a variadic
// parameter passes no variadic arguments.
func (r *Reflector) Invoke(c Constructable, args []any) (any, error) {
	f, err := asFunc(c)
	if err != nil {
		return nil, err
	}

	fv := reflect.ValueOf(f.fn)
	shape, err := r.shapes.get(fv.Type())
	if err != nil {
		return nil, err
	}
	if len(args) != len(shape.in) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", location(fv), len(shape.in), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		target := shape.in[i]
		if shape.variadic && i == len(args)-1 {
			slice, err := variadicArg(arg, target)
			if err != nil {
				return nil, fmt.Errorf("%s: parameter %s: %w", location(fv), f.paramName(i), err)
			}
			in[i] = slice
			continue
		}
		v, err := adapt(arg, target)
		if err != nil {
			return nil, fmt.Errorf("%s: parameter %s: %w", location(fv), f.paramName(i), err)
		}
		in[i] = v
	}

	var out []reflect.Value
	if shape.variadic {
		out = fv.CallSlice(in)
	} else {
		out = fv.Call(in)
	}

	var result any
	if shape.returnsValue {
		result = valueOf(out[0])
	}
	if shape.returnsError {
		if errValue := out[len(out)-1]; !errValue.IsNil() {
			return nil, errValue.Interface().(error)
		}
	}
	return result, nil
}

// ClearCache drops cached function shapes.
func (r *Reflector) ClearCache() {
	r.shapes.clear()
}

// valueOf unwraps a result, treating nil pointers, maps, slices,
// interfaces and funcs as no value.
func valueOf(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}

func variadicArg(arg any, sliceType reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.MakeSlice(sliceType, 0, 0), nil
	}
	rv := reflect.ValueOf(arg)
	if rv.Type().AssignableTo(sliceType) {
		return rv, nil
	}
	elem, err := adapt(arg, sliceType.Elem())
	if err != nil {
		return reflect.Value{}, err
	}
	slice := reflect.MakeSlice(sliceType, 0, 1)
	return reflect.Append(slice, elem), nil
}

// adapt converts arg to a value assignable to t.
func adapt(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(arg)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Type().AssignableTo(t) {
		return rv.Elem(), nil
	}
	if t.Kind() == reflect.Ptr && rv.Type().AssignableTo(t.Elem()) {
		p := reflect.New(t.Elem())
		p.Elem().Set(rv)
		return p, nil
	}
	if sameKindFamily(rv.Kind(), t.Kind()) && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %v", arg, t)
}

func sameKindFamily(a, b reflect.Kind) bool {
	return (isNumericKind(a) && isNumericKind(b)) || (a == reflect.String && b == reflect.String)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// location formats the declaring function and its source position.
func location(fv reflect.Value) string {
	fn := runtime.FuncForPC(fv.Pointer())
	if fn == nil {
		return fv.Type().String()
	}
	file, line := fn.FileLine(fn.Entry())
	return fmt.Sprintf("%s (%s:%d)", fn.Name(), file, line)
}
