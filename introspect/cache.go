package introspect

import (
	"fmt"
	"reflect"
	"sync"
)

var errorInterface = reflect.TypeOf((*error)(nil)).Elem()

// funcShape is the reflected, name-independent part of a function signature.
type funcShape struct {
	in           []reflect.Type
	variadic     bool
	returnsValue bool
	returnsError bool
}

// shapeCache caches function shapes to avoid repeated type analysis.
type shapeCache struct {
	mu     sync.RWMutex
	shapes map[reflect.Type]*funcShape
}

func newShapeCache() *shapeCache {
	return &shapeCache{
		shapes: make(map[reflect.Type]*funcShape),
	}
}

// get retrieves or computes the shape of fnType.
func (sc *shapeCache) get(fnType reflect.Type) (*funcShape, error) {
	sc.mu.RLock()
	shape, exists := sc.shapes[fnType]
	sc.mu.RUnlock()
	if exists {
		return shape, nil
	}

	shape, err := parseShape(fnType)
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	sc.shapes[fnType] = shape
	sc.mu.Unlock()
	return shape, nil
}

// parseShape validates return values and extracts parameter types.
// Accepted results: none, (T), (error), (T, error).
func parseShape(fnType reflect.Type) (*funcShape, error) {
	shape := &funcShape{variadic: fnType.IsVariadic()}

	switch fnType.NumOut() {
	case 0:
	case 1:
		if fnType.Out(0) == errorInterface {
			shape.returnsError = true
		} else {
			shape.returnsValue = true
		}
	case 2:
		if !fnType.Out(1).Implements(errorInterface) {
			return nil, fmt.Errorf("second return value must be error, got %v", fnType.Out(1))
		}
		shape.returnsValue = true
		shape.returnsError = true
	default:
		return nil, fmt.Errorf("function must return at most (T, error), got %d return values", fnType.NumOut())
	}

	shape.in = make([]reflect.Type, fnType.NumIn())
	for i := range shape.in {
		shape.in[i] = fnType.In(i)
	}
	return shape, nil
}

// clear drops all cached shapes.
func (sc *shapeCache) clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.shapes = make(map[reflect.Type]*funcShape)
}
