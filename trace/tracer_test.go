package trace

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func double(x int) int { return x * 2 }

func add(x, y int) int { return x + y }

func divmod(a, b int) (int, int) { return a / b, a % b }

func noop() {}

// recursing makes every call in this module traced into; everything else is
// atomic.
var recursing = &ModulePolicy{Module: "github.com/viant/flowtrace"}

func TestTracer(t *testing.T) {
	tests := []struct {
		description string
		policy      Policy
		run         func(tr *Tracer)
		expect      []string
	}{
		{
			description: "nested calls group in evaluation order",
			policy:      recursing,
			// y := add(double(v), w)
			run: func(tr *Tracer) {
				v, w := 3, 4
				AssignBoxed(tr, Targets(Name("y")), ReturnBoxed(tr,
					Function(tr, add, 2)(
						ArgumentBoxed(tr, ReturnBoxed(tr,
							Function(tr, double, 1)(
								ArgumentBoxed(tr, AccessBoxed(tr, "v", v), "", 0),
							), false), "", 0),
						ArgumentBoxed(tr, AccessBoxed(tr, "w", w), "", 0),
					), false))
			},
			expect: []string{
				"access v=3",
				"call double/1",
				"arg 3 produced",
				"return 6",
				"access w=4",
				"call add/2",
				"arg 6 produced",
				"arg 4 produced",
				"return 10",
				"assign y = 10",
			},
		},
		{
			description: "atomic callee bodies are suppressed",
			policy:      &ModulePolicy{},
			run: func(tr *Tracer) {
				fn := Function(tr, add, 2)
				a := Argument(tr, 3, "", 0)
				b := Argument(tr, 4, "", 0)
				// what an instrumented body would report
				Access(tr, "hidden", 1)
				Return(tr, fn(a, b), false)
			},
			expect: []string{
				"call add/2 atomic",
				"arg 3",
				"arg 4",
				"return 7",
			},
		},
		{
			description: "calls inside an atomic callee are suppressed",
			policy:      &ModulePolicy{},
			run: func(tr *Tracer) {
				fn := Function(tr, add, 2)
				a := Argument(tr, 1, "", 0)
				b := Argument(tr, 2, "", 0)
				// a traced call performed inside the atomic body
				Function(tr, noop, 0)()
				ReturnVoid(tr)
				Return(tr, fn(a, b), false)
			},
			expect: []string{
				"call add/2 atomic",
				"arg 1",
				"arg 2",
				"return 3",
			},
		},
		{
			description: "zero argument call begins immediately",
			policy:      recursing,
			run: func(tr *Tracer) {
				Function(tr, noop, 0)()
				ReturnVoid(tr)
			},
			expect: []string{
				"call noop/0",
				"return <nil>",
			},
		},
		{
			description: "destructured result",
			policy:      recursing,
			// q, r := divmod(a, b)
			run: func(tr *Tracer) {
				a, b := 7, 3
				tmp0, tmp1 := Function(tr, divmod, 2)(
					Argument(tr, a, "", 0),
					Argument(tr, b, "", 0),
				)
				AssignValuesBoxed(tr, Targets(Seq(Name("q"), Name("r"))),
					ReturnValuesBoxed(tr, tmp0, tmp1))
			},
			expect: []string{
				"call divmod/2",
				"arg 7",
				"arg 3",
				"return multi [2 1]",
				"assign (q, r) = [2 1]",
			},
		},
		{
			description: "deletion",
			policy:      recursing,
			run: func(tr *Tracer) {
				Delete(tr, "env[key]")
			},
			expect: []string{
				"delete env[key]",
			},
		},
	}
	for _, tc := range tests {
		var events []Event
		tr := New(WithPolicy(tc.policy), WithListener(func(event Event) {
			events = append(events, event)
		}))
		tc.run(tr)
		var actual []string
		for _, event := range events {
			actual = append(actual, render(event))
		}
		assert.EqualValues(t, tc.expect, actual, tc.description)
		assert.EqualValues(t, 0, tr.Depth(), tc.description)
	}
}

func TestTracerArgumentProvenance(t *testing.T) {
	var events []Event
	tr := New(WithPolicy(recursing), WithListener(func(event Event) {
		events = append(events, event)
	}))
	Return(tr,
		Function(tr, double, 1)(
			ArgumentBoxed(tr, AccessBoxed(tr, "v", 5), "", 0),
		), false)

	assert.EqualValues(t, 4, len(events))
	access, ok := events[0].(*AccessEvent)
	assert.True(t, ok)
	argument, ok := events[2].(*ArgumentEvent)
	assert.True(t, ok)
	assert.Same(t, access, argument.Producer, "argument carries the access that produced it")
}

func TestTracerTracksPointerArguments(t *testing.T) {
	tr := New(WithPolicy(recursing))
	subject := &struct{ n int }{n: 1}
	use := func(v *struct{ n int }) *struct{ n int } { return v }

	Return(tr, Function(tr, use, 1)(Argument(tr, subject, "", 0)), false)

	id, ok := tr.Tracker().ID(subject)
	assert.True(t, ok, "argument identity is tracked")
	resolved, ok := tr.Tracker().Resolve(id)
	assert.True(t, ok)
	assert.Same(t, subject, resolved)
}

func TestTracerReset(t *testing.T) {
	tr := New()
	Function(tr, noop, 0)()
	assert.EqualValues(t, 1, tr.Depth())
	tr.Reset()
	assert.EqualValues(t, 0, tr.Depth())
}

func TestTracerPanics(t *testing.T) {
	assert.Panics(t, func() {
		Argument(New(), 1, "", 0)
	}, "argument without a pending call")
	assert.Panics(t, func() {
		ReturnVoid(New())
	}, "return at top level")
}

func render(event Event) string {
	switch actual := event.(type) {
	case *CallEvent:
		atomic := ""
		if actual.Function.Atomic {
			atomic = " atomic"
		}
		return fmt.Sprintf("call %v/%v%v", actual.Function.Name(), actual.NumArgs, atomic)
	case *ArgumentEvent:
		produced := ""
		if actual.Producer != nil {
			produced = " produced"
		}
		return fmt.Sprintf("arg %v%v", actual.Value, produced)
	case *ReturnEvent:
		if actual.MultipleValues {
			return fmt.Sprintf("return multi %v", actual.Value)
		}
		return fmt.Sprintf("return %v", actual.Value)
	case *AccessEvent:
		return fmt.Sprintf("access %v=%v", actual.Name, actual.Value)
	case *AssignEvent:
		return fmt.Sprintf("assign %v = %v", renderTargets(actual.Targets), actual.Value)
	case *DeleteEvent:
		return "delete " + strings.Join(actual.Names, ", ")
	}
	return fmt.Sprintf("%T", event)
}

func renderTargets(targets []Target) string {
	parts := make([]string, 0, len(targets))
	for _, target := range targets {
		if len(target.Elems) > 0 {
			parts = append(parts, "("+renderTargets(target.Elems)+")")
			continue
		}
		parts = append(parts, target.Name)
	}
	return strings.Join(parts, ", ")
}
