package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnbox(t *testing.T) {
	produced := &AccessEvent{Name: "x", Value: 1}
	tests := []struct {
		description string
		value       any
		expect      any
	}{
		{
			description: "boxed int",
			value:       Boxed[int]{Value: 3, Event: produced},
			expect:      3,
		},
		{
			description: "boxed string without event",
			value:       Boxed[string]{Value: "abc"},
			expect:      "abc",
		},
		{
			description: "plain value passes through",
			value:       42,
			expect:      42,
		},
		{
			description: "nil passes through",
			value:       nil,
			expect:      nil,
		},
	}
	for _, tc := range tests {
		assert.EqualValues(t, tc.expect, Unbox(tc.value), tc.description)
		// idempotent
		assert.EqualValues(t, tc.expect, Unbox(Unbox(tc.value)), tc.description)
	}
}

func TestUnboxKeepsIdentity(t *testing.T) {
	value := &struct{ n int }{n: 1}
	unboxed := Unbox(Boxed[any]{Value: value})
	assert.Same(t, value, unboxed)
}

func TestProvenance(t *testing.T) {
	produced := &ReturnEvent{Value: 6}
	value, event := Provenance(Boxed[int]{Value: 6, Event: produced})
	assert.EqualValues(t, 6, value)
	assert.Same(t, produced, event)

	value, event = Provenance("plain")
	assert.EqualValues(t, "plain", value)
	assert.Nil(t, event)
}

func TestCompound(t *testing.T) {
	assert.False(t, Compound(Targets(Name("x"), Name("y"))))
	assert.True(t, Compound(Targets(Seq(Name("x"), Name("y")))))
	assert.False(t, Compound(nil))
}
