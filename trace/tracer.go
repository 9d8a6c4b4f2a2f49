package trace

import (
	"github.com/go-logr/logr"
)

// Listener receives trace events synchronously, in program order.
type Listener func(event Event)

// Tracer is the execution tracer: rewritten code reports callee, argument,
// return, access, assignment and deletion observations to it through the
// generic entry points in this package, and the tracer emits Event values to
// its listeners in program order.
//
// A Tracer is the single shared listener for one traced execution. It is
// synchronous and must not be re-entered concurrently; a traced program must
// not spawn concurrent execution that itself traces, or event order becomes
// undefined.
type Tracer struct {
	listeners []Listener
	policy    Policy
	tracker   Tracker
	log       logr.Logger
	scopes    []*scopeItem
}

// scopeItem is the scope of currently executing code. Each scope keeps its
// own stack of in-flight call expressions. emit governs events observed
// inside the scope's body; announced records whether the opening call's own
// event group was emitted, so the matching return is too.
type scopeItem struct {
	call      *CallEvent // call that opened this scope; nil at top level
	emit      bool
	announced bool
	calls     []*callItem
}

// callItem is a call expression whose arguments are still being evaluated.
type callItem struct {
	fn        any
	info      *FuncInfo
	nargs     int
	remaining int
	args      []argItem
}

type argItem struct {
	value    any
	name     string
	stars    int
	producer Event
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithListener registers a listener for trace events.
func WithListener(listener Listener) Option {
	return func(t *Tracer) {
		t.listeners = append(t.listeners, listener)
	}
}

// WithPolicy sets the tracing policy oracle.
func WithPolicy(policy Policy) Option {
	return func(t *Tracer) {
		t.policy = policy
	}
}

// WithTracker sets the object identity oracle.
func WithTracker(tracker Tracker) Option {
	return func(t *Tracer) {
		t.tracker = tracker
	}
}

// WithLogger sets the tracer logger.
func WithLogger(log logr.Logger) Option {
	return func(t *Tracer) {
		t.log = log
	}
}

// New creates a tracer. Without options it traces every call as atomic,
// tracks identities with an ObjectTracker and discards log output.
func New(options ...Option) *Tracer {
	t := &Tracer{
		policy:  &ModulePolicy{},
		tracker: NewObjectTracker(),
		log:     logr.Discard(),
	}
	for _, option := range options {
		option(t)
	}
	t.Reset()
	return t
}

// Tracker returns the tracer's identity oracle.
func (t *Tracer) Tracker() Tracker {
	return t.tracker
}

// Reset clears all tracer state accumulated by a traced execution.
func (t *Tracer) Reset() {
	t.scopes = []*scopeItem{{emit: true}}
}

// Depth returns the current traced call depth.
func (t *Tracer) Depth() int {
	return len(t.scopes) - 1
}

func (t *Tracer) emit(event Event) {
	for _, listener := range t.listeners {
		listener(event)
	}
}

func (t *Tracer) scope() *scopeItem {
	return t.scopes[len(t.scopes)-1]
}

// traceFunction records an evaluated callee. With zero arguments the call
// begins immediately.
func (t *Tracer) traceFunction(fn any, nargs int) {
	info := inspectFunction(fn)
	info.Atomic = t.policy.Atomic(info)
	scope := t.scope()
	scope.calls = append(scope.calls, &callItem{fn: fn, info: info, nargs: nargs, remaining: nargs})
	if nargs == 0 {
		t.beginCall()
	}
}

// traceArgument records one evaluated argument of the innermost in-flight
// call. Once the last argument arrives the call begins.
func (t *Tracer) traceArgument(value any, name string, stars int, producer Event) {
	scope := t.scope()
	if len(scope.calls) == 0 {
		panic("trace: argument without pending call")
	}
	call := scope.calls[len(scope.calls)-1]
	call.args = append(call.args, argItem{value: value, name: name, stars: stars, producer: producer})
	call.remaining--
	if call.remaining == 0 {
		t.beginCall()
	}
}

// beginCall is invoked immediately before the real call is performed: it
// emits the call's event group and enters the callee scope.
func (t *Tracer) beginCall() {
	scope := t.scope()
	call := scope.calls[len(scope.calls)-1]
	scope.calls = scope.calls[:len(scope.calls)-1]

	event := &CallEvent{Function: call.info, NumArgs: call.nargs}
	emit := scope.emit && t.policy.Trace(call.info)
	if emit {
		t.emit(event)
	} else {
		t.log.V(1).Info("suppressed call", "function", call.info.FullName())
	}
	for _, arg := range call.args {
		if t.tracker.Trackable(arg.value) {
			t.tracker.Track(arg.value)
		}
		if emit {
			t.emit(&ArgumentEvent{Value: arg.value, Name: arg.name, Stars: arg.stars, Producer: arg.producer})
		}
	}
	// An atomic callee's own events still emit, but nothing observed inside
	// its body does.
	t.scopes = append(t.scopes, &scopeItem{
		call:      event,
		emit:      emit && !call.info.Atomic,
		announced: emit,
	})
}

// traceReturn records a returned result, leaves the callee scope and returns
// the emitted event for boxing.
func (t *Tracer) traceReturn(value any, multiple bool) Event {
	if len(t.scopes) < 2 {
		panic("trace: return without call")
	}
	scope := t.scope()
	t.scopes = t.scopes[:len(t.scopes)-1]

	if multiple {
		if values, ok := value.([]any); ok {
			for _, v := range values {
				if t.tracker.Trackable(v) {
					t.tracker.Track(v)
				}
			}
		}
	} else if t.tracker.Trackable(value) {
		t.tracker.Track(value)
	}
	event := &ReturnEvent{Value: value, MultipleValues: multiple}
	if scope.announced {
		t.emit(event)
	}
	return event
}

func (t *Tracer) traceAccess(name string, value any) Event {
	event := &AccessEvent{Name: name, Value: value}
	if t.scope().emit {
		t.emit(event)
	}
	return event
}

func (t *Tracer) traceAssign(targets []Target, value any, producer Event) Event {
	event := &AssignEvent{Targets: targets, Value: value, Producer: producer}
	if t.scope().emit {
		t.emit(event)
	}
	return event
}

func (t *Tracer) traceDelete(names []string) {
	if t.scope().emit {
		t.emit(&DeleteEvent{Names: names})
	}
}
