package nasc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toutaio/toutago-nasc-container/introspect"
)

// fakeValue is an instance whose type is named explicitly.
type fakeValue struct {
	Type string
	Tag  string
}

// fakeIntrospector describes constructables by name with synthetic
// signatures. Constructables are plain strings.
type fakeIntrospector struct {
	sigs  map[string]*introspect.Signature
	fns   map[string]func(args []any) (any, error)
	types map[string]bool
	calls map[string]int
}

func newFakeIntrospector() *fakeIntrospector {
	return &fakeIntrospector{
		sigs:  make(map[string]*introspect.Signature),
		fns:   make(map[string]func(args []any) (any, error)),
		types: make(map[string]bool),
		calls: make(map[string]int),
	}
}

// define registers a constructable called name.
func (f *fakeIntrospector) define(name string, fn func(args []any) (any, error), params ...introspect.Param) string {
	f.sigs[name] = &introspect.Signature{Params: params, Location: "fake:" + name}
	f.fns[name] = fn
	return name
}

// produce defines a constructable returning a new fakeValue of typ.
func (f *fakeIntrospector) produce(name, typ string, params ...introspect.Param) string {
	return f.define(name, func([]any) (any, error) {
		return &fakeValue{Type: typ, Tag: fmt.Sprintf("%s#%d", name, f.calls[name])}, nil
	}, params...)
}

func (f *fakeIntrospector) Inspect(c introspect.Constructable) (*introspect.Signature, error) {
	name, _ := c.(string)
	sig, ok := f.sigs[name]
	if !ok {
		return nil, fmt.Errorf("unknown constructable %v", c)
	}
	return sig, nil
}

func (f *fakeIntrospector) Invoke(c introspect.Constructable, args []any) (any, error) {
	name := c.(string)
	f.calls[name]++
	return f.fns[name](args)
}

func (f *fakeIntrospector) HasType(name string) bool { return f.types[name] }

func (f *fakeIntrospector) Constructor(name string) (introspect.Constructable, bool) {
	if _, ok := f.sigs["new:"+name]; ok {
		return "new:" + name, true
	}
	return nil, false
}

func (f *fakeIntrospector) Instantiate(name string) (any, error) {
	return &fakeValue{Type: name, Tag: "instantiated"}, nil
}

func (f *fakeIntrospector) Satisfies(v any, typeName string) bool {
	switch v := v.(type) {
	case *fakeValue:
		return v.Type == typeName
	case int:
		return typeName == "int"
	case string:
		return typeName == "string"
	}
	return false
}

func untyped(name string) introspect.Param {
	return introspect.Param{Name: name}
}

func typed(name, typ string) introspect.Param {
	return introspect.Param{Name: name, Type: typ, Builtin: typ == "int" || typ == "string"}
}

func echo(args []any) (any, error) { return args, nil }

func TestArguments_NameOverrideForUntyped(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	container.MustSet("count", fake.produce("count-factory", "Count"))
	fn := fake.define("fn", echo, untyped("count"))

	args, err := container.Arguments(fn, map[string]any{"count": 7}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{7}, args)
	assert.Zero(t, fake.calls["count-factory"], "override wins over the container")
}

func TestArguments_NameOverrideIgnoredForTyped(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	fn := fake.define("fn", echo, introspect.Param{Name: "count", Type: "int", Builtin: true, HasDefault: true, Default: 1})

	args, err := container.Arguments(fn, map[string]any{"count": 7}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{1}, args)
}

func TestArguments_TypeOverride(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	container.MustSet("Logger", fake.produce("logger-factory", "Logger"))
	fn := fake.define("fn", echo, typed("log", "Logger"))

	override := &fakeValue{Type: "Logger", Tag: "override"}
	args, err := container.Arguments(fn, map[string]any{"Logger": override}, nil)
	require.NoError(t, err)
	assert.Same(t, override, args[0])
	assert.Zero(t, fake.calls["logger-factory"])
}

func TestArguments_UntypedResolvesByName(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	container.MustSet("count", fake.produce("count-factory", "Count"))
	fn := fake.define("fn", echo, untyped("count"))

	// data is not consulted for untyped parameters
	args, err := container.Arguments(fn, nil, map[string]any{"count": 7})
	require.NoError(t, err)
	require.IsType(t, &fakeValue{}, args[0])
	assert.Equal(t, "Count", args[0].(*fakeValue).Type)
}

func TestArguments_UntypedIgnoresData(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	fn := fake.define("fn", echo, untyped("count"))

	_, err := container.Arguments(fn, nil, map[string]any{"count": 7})
	var unresolved *UnresolvableParameterError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "count", unresolved.Param)
	assert.Equal(t, "fake:fn", unresolved.Location)
}

func TestArguments_TypedResolvesFromContainer(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	container.MustSet("Logger", fake.produce("logger-factory", "Logger"))
	fn := fake.define("fn", echo, typed("log", "Logger"))

	args, err := container.Arguments(fn, nil, nil)
	require.NoError(t, err)
	assert.Same(t, container.MustGet("Logger"), args[0])
}

func TestArguments_MismatchedBindingFallsThrough(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	// the binding for Logger produces something that is not a Logger
	container.MustSet("Logger", fake.produce("wrong-factory", "Mailer"))

	withData := fake.define("with-data", echo, typed("log", "Logger"))
	fromData := &fakeValue{Type: "Logger", Tag: "data"}
	args, err := container.Arguments(withData, nil, map[string]any{"log": fromData})
	require.NoError(t, err)
	assert.Same(t, fromData, args[0])

	fallback := &fakeValue{Type: "Logger", Tag: "default"}
	withDefault := fake.define("with-default", echo,
		introspect.Param{Name: "log", Type: "Logger", HasDefault: true, Default: fallback})
	args, err = container.Arguments(withDefault, nil, nil)
	require.NoError(t, err)
	assert.Same(t, fallback, args[0])

	required := fake.define("required", echo, typed("log", "Logger"))
	_, err = container.Arguments(required, nil, nil)
	var unresolved *UnresolvableParameterError
	assert.ErrorAs(t, err, &unresolved)
}

func TestArguments_BuiltinNeverResolvedByType(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	container.MustSet("int", fake.define("int-factory", func([]any) (any, error) { return 42, nil }))
	fn := fake.define("fn", echo, typed("port", "int"))

	_, err := container.Arguments(fn, nil, nil)
	var unresolved *UnresolvableParameterError
	require.ErrorAs(t, err, &unresolved)
	assert.Zero(t, fake.calls["int-factory"])

	args, err := container.Arguments(fn, nil, map[string]any{"port": 8080})
	require.NoError(t, err)
	assert.Equal(t, []any{8080}, args)
}

func TestArguments_DataRequiresMatchingType(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	fn := fake.define("fn", echo, introspect.Param{Name: "port", Type: "int", Builtin: true, HasDefault: true, Default: 80})

	args, err := container.Arguments(fn, nil, map[string]any{"port": "8080"})
	require.NoError(t, err)
	assert.Equal(t, []any{80}, args, "a string does not satisfy int")
}

func TestArguments_DefaultThenOptional(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	fn := fake.define("fn", echo,
		introspect.Param{Name: "level", HasDefault: true, Default: "info"},
		introspect.Param{Name: "extra", Optional: true},
		introspect.Param{Name: "both", HasDefault: true, Default: 3, Optional: true},
	)

	args, err := container.Arguments(fn, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"info", nil, 3}, args)
}

func TestArguments_InspectFailure(t *testing.T) {
	container := New(WithIntrospector(newFakeIntrospector()))

	_, err := container.Arguments("undefined", nil, nil)
	var invalid *InvalidBindingError
	assert.ErrorAs(t, err, &invalid)
}

func TestArguments_NestedFailurePropagates(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	container.MustSet("Logger", fake.produce("logger-factory", "Logger", untyped("missing")))
	fn := fake.define("fn", echo, introspect.Param{Name: "log", Type: "Logger", Optional: true})

	// a failing nested build is an error, not a fall through
	_, err := container.Arguments(fn, nil, nil)
	var unresolved *UnresolvableParameterError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "missing", unresolved.Param)
	assert.Equal(t, "fake:logger-factory", unresolved.Location)
}

func TestGet_WithFakeIntrospector(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	fake.types["Service"] = true
	fake.produce("new:Service", "Service", typed("name", "string"))
	fake.types["Plain"] = true

	svc, err := container.Get("Service", WithData(map[string]any{"name": "api"}))
	require.NoError(t, err)
	assert.Equal(t, "Service", svc.(*fakeValue).Type)

	plain, err := container.Get("Plain")
	require.NoError(t, err)
	assert.Equal(t, "instantiated", plain.(*fakeValue).Tag)
}

func TestGet_DecoratorReceivesCurrentInstance(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	container.MustSet("X", fake.produce("x-factory", "X"))

	var received []any
	container.MustSet("X", fake.define("d1", func(args []any) (any, error) {
		received = append(received, args[0])
		return nil, nil
	}, typed("x", "X")))
	container.MustSet("X", fake.define("d2", func(args []any) (any, error) {
		received = append(received, args[0])
		return &fakeValue{Type: "X", Tag: "d2"}, nil
	}, typed("x", "X")))

	got := container.MustGet("X").(*fakeValue)
	require.Len(t, received, 2)
	assert.Same(t, received[0], received[1])
	assert.Equal(t, "x-factory#1", received[0].(*fakeValue).Tag)
	assert.Equal(t, "d2", got.Tag)
}

func TestGet_DecoratorError(t *testing.T) {
	fake := newFakeIntrospector()
	container := New(WithIntrospector(fake))
	container.MustSet("X", fake.produce("x-factory", "X"))
	container.MustSet("X", fake.define("d", func([]any) (any, error) {
		return nil, fmt.Errorf("decorator broke")
	}, typed("x", "X")))

	_, err := container.Get("X")
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "X", resErr.ID)

	_, cached := container.registry.Cached("X")
	assert.False(t, cached)
}
