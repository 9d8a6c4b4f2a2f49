package trace

// Boxed wraps a value together with the event that produced it. Boxes exist
// only inside compositions of generated trace calls: the rewriter threads a
// value's provenance from one rewritten sub-expression to the next enclosing
// one without the original program ever observing the box.
type Boxed[T any] struct {
	Value T
	Event Event
}

// boxed lets Unbox strip any Boxed instantiation.
type boxed interface {
	unbox() (any, Event)
}

func (b Boxed[T]) unbox() (any, Event) {
	return b.Value, b.Event
}

// Unbox unwraps a boxed value. Unwrapping a non-boxed value returns it
// unchanged, so unboxing is idempotent and transparent to identity.
func Unbox(v any) any {
	if b, ok := v.(boxed); ok {
		value, _ := b.unbox()
		return value
	}
	return v
}

// Provenance returns the value and its producing event, if v is boxed.
func Provenance(v any) (any, Event) {
	if b, ok := v.(boxed); ok {
		return b.unbox()
	}
	return v, nil
}
