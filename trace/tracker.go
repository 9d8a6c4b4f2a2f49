package trace

import (
	"reflect"
	"strconv"
)

// Tracker is the object identity oracle: it maps runtime values to stable
// identity labels and back. The tracer and the graph builder share one
// injected Tracker per traced execution; its storage lifetime and eviction
// policy belong to the embedding application.
type Tracker interface {
	// Track starts tracking a value, returning its ID. Tracking an already
	// tracked value returns the existing ID. The second result is false for
	// untrackable values.
	Track(v any) (string, bool)
	// ID returns the ID of an already tracked value.
	ID(v any) (string, bool)
	// Resolve looks up a tracked value by ID.
	Resolve(id string) (any, bool)
	// Trackable reports whether the value has usable identity.
	Trackable(v any) bool
}

// Ref stands in for a tracked object in a deserialized event stream, carrying
// only its identity label.
type Ref struct {
	ID string `yaml:"id" msgpack:"id"`
}

// RefTracker is the Tracker for replayed event streams, where objects appear
// as Ref values already carrying their identity labels.
type RefTracker struct {
	refs map[string]any
}

// NewRefTracker creates an empty ref tracker.
func NewRefTracker() *RefTracker {
	return &RefTracker{refs: map[string]any{}}
}

// Trackable implements Tracker.
func (t *RefTracker) Trackable(v any) bool {
	_, ok := v.(Ref)
	return ok
}

// Track implements Tracker.
func (t *RefTracker) Track(v any) (string, bool) {
	ref, ok := v.(Ref)
	if !ok {
		return "", false
	}
	t.refs[ref.ID] = v
	return ref.ID, true
}

// ID implements Tracker.
func (t *RefTracker) ID(v any) (string, bool) {
	ref, ok := v.(Ref)
	if !ok {
		return "", false
	}
	return ref.ID, true
}

// Resolve implements Tracker.
func (t *RefTracker) Resolve(id string) (any, bool) {
	v, ok := t.refs[id]
	return v, ok
}

// ObjectTracker is the default Tracker. Identity is the referent address of
// pointer-like values; IDs are never recycled within the tracker's lifetime.
// Primitive scalars, structs, slices and funcs have no stable identity and
// are not trackable. A pointer to a struct and a pointer to its first field
// share an address and therefore resolve to the same identity.
type ObjectTracker struct {
	mem   map[uintptr]string
	refs  map[string]any
	count int
}

// NewObjectTracker creates an empty object tracker.
func NewObjectTracker() *ObjectTracker {
	return &ObjectTracker{
		mem:  map[uintptr]string{},
		refs: map[string]any{},
	}
}

// Trackable implements Tracker.
func (t *ObjectTracker) Trackable(v any) bool {
	_, ok := address(v)
	return ok
}

// Track implements Tracker.
func (t *ObjectTracker) Track(v any) (string, bool) {
	addr, ok := address(v)
	if !ok {
		return "", false
	}
	if id, ok := t.mem[addr]; ok {
		return id, true
	}
	t.count++
	id := strconv.Itoa(t.count)
	t.mem[addr] = id
	t.refs[id] = v
	return id, true
}

// ID implements Tracker.
func (t *ObjectTracker) ID(v any) (string, bool) {
	addr, ok := address(v)
	if !ok {
		return "", false
	}
	id, ok := t.mem[addr]
	return id, ok
}

// Resolve implements Tracker.
func (t *ObjectTracker) Resolve(id string) (any, bool) {
	v, ok := t.refs[id]
	return v, ok
}

func address(v any) (uintptr, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return rv.Pointer(), rv.Pointer() != 0
	default:
		return 0, false
	}
}
