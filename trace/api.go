package trace

// The functions below are the runtime surface called by rewritten code. They
// are generic so that instrumented source stays statically typed: each one
// forwards its observation to the tracer and hands the unchanged value back
// to the surrounding expression. The Boxed variants thread the producing
// event to the next enclosing trace call; the rewriter picks them whenever it
// can prove the sub-expression's value already has a known producer.

// Function announces an evaluated callee with the argument count known at the
// call site, before any argument is evaluated.
func Function[F any](t *Tracer, fn F, nargs int) F {
	t.traceFunction(fn, nargs)
	return fn
}

// Argument announces one evaluated argument.
func Argument[T any](t *Tracer, v T, name string, stars int) T {
	t.traceArgument(v, name, stars, nil)
	return v
}

// ArgumentBoxed announces one evaluated argument whose producing event is
// known, and unboxes it for the real call.
func ArgumentBoxed[T any](t *Tracer, b Boxed[T], name string, stars int) T {
	t.traceArgument(b.Value, name, stars, b.Event)
	return b.Value
}

// Return announces a call result consumed by unrewritten code.
func Return[T any](t *Tracer, v T, multiple bool) T {
	t.traceReturn(v, multiple)
	return v
}

// ReturnBoxed announces a call result and boxes it for the enclosing
// rewritten construct.
func ReturnBoxed[T any](t *Tracer, v T, multiple bool) Boxed[T] {
	event := t.traceReturn(v, multiple)
	return Boxed[T]{Value: v, Event: event}
}

// ReturnValues announces a destructured multi-value result.
func ReturnValues(t *Tracer, vs ...any) {
	t.traceReturn(vs, true)
}

// ReturnValuesBoxed announces a destructured multi-value result and boxes it
// for an enclosing assignment.
func ReturnValuesBoxed(t *Tracer, vs ...any) Boxed[[]any] {
	event := t.traceReturn(vs, true)
	return Boxed[[]any]{Value: vs, Event: event}
}

// ReturnVoid announces the completion of a call with no usable result.
func ReturnVoid(t *Tracer) {
	t.traceReturn(nil, false)
}

// Access announces a read of a named variable.
func Access[T any](t *Tracer, name string, v T) T {
	t.traceAccess(name, v)
	return v
}

// AccessBoxed announces a read of a named variable and boxes the value for
// the enclosing rewritten construct.
func AccessBoxed[T any](t *Tracer, name string, v T) Boxed[T] {
	event := t.traceAccess(name, v)
	return Boxed[T]{Value: v, Event: event}
}

// Assign announces an assignment before the store takes effect.
func Assign[T any](t *Tracer, targets []Target, v T) T {
	t.traceAssign(targets, v, nil)
	return v
}

// AssignBoxed announces an assignment whose right-hand side has a known
// producer, and unboxes the value for the store.
func AssignBoxed[T any](t *Tracer, targets []Target, b Boxed[T]) T {
	t.traceAssign(targets, b.Value, b.Event)
	return b.Value
}

// AssignValues announces a parallel assignment of independently evaluated
// values.
func AssignValues(t *Tracer, targets []Target, vs ...any) {
	t.traceAssign(targets, vs, nil)
}

// AssignValuesBoxed announces a destructuring assignment whose values came
// from a single multi-value producer.
func AssignValuesBoxed(t *Tracer, targets []Target, b Boxed[[]any]) {
	t.traceAssign(targets, b.Value, b.Event)
}

// Delete announces names about to be removed, before the deletion executes.
func Delete(t *Tracer, names ...string) {
	t.traceDelete(names)
}
