package trace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteSource(t *testing.T) {
	tests := []struct {
		description    string
		code           string
		expectContains []string
		expectAbsent   []string
	}{
		{
			description: "single assignment from a call",
			code: `
package main

func run(x int) int {
	y := double(x)
	return y
}

func double(v int) int {
	return v * 2
}
`,
			expectContains: []string{
				`import trace "github.com/viant/flowtrace/trace"`,
				`y := trace.AssignBoxed(__trace__, trace.Targets(trace.Name("y")), trace.ReturnBoxed(__trace__, trace.Function(__trace__, double, 1)(trace.ArgumentBoxed(__trace__, trace.AccessBoxed(__trace__, "x", x), "", 0)), false))`,
				`return trace.Access(__trace__, "y", y)`,
				`return trace.Access(__trace__, "v", v) * 2`,
			},
		},
		{
			description: "void call completion is announced",
			code: `
package main

func emit() {}

func run() {
	emit()
}
`,
			expectContains: []string{
				`trace.Function(__trace__, emit, 0)()`,
				`trace.ReturnVoid(__trace__)`,
			},
		},
		{
			description: "destructuring assignment goes through temporaries",
			code: `
package main

func divmod(a, b int) (int, int) {
	return a / b, a % b
}

func run(a, b int) int {
	q, r := divmod(a, b)
	return q + r
}
`,
			expectContains: []string{
				`__tmp0, __tmp1 := trace.Function(__trace__, divmod, 2)(trace.ArgumentBoxed(__trace__, trace.AccessBoxed(__trace__, "a", a), "", 0), trace.ArgumentBoxed(__trace__, trace.AccessBoxed(__trace__, "b", b), "", 0))`,
				`trace.AssignValuesBoxed(__trace__, trace.Targets(trace.Seq(trace.Name("q"), trace.Name("r"))), trace.ReturnValuesBoxed(__trace__, __tmp0, __tmp1))`,
				`q, r := __tmp0, __tmp1`,
			},
		},
		{
			description: "map deletion is announced before it executes",
			code: `
package main

func run(m map[string]int, k string) {
	delete(m, k)
}
`,
			expectContains: []string{
				`trace.Delete(__trace__, "m[k]")`,
				"\tdelete(m, k)",
			},
		},
		{
			description: "constant arguments are not announced",
			code: `
package main

func add(a, b int) int {
	return a + b
}

func run(x int) int {
	return add(2, x)
}
`,
			expectContains: []string{
				// The arity counts announced arguments only, so x takes
				// positional slot 0.
				`trace.Function(__trace__, add, 1)(2, trace.ArgumentBoxed(__trace__, trace.AccessBoxed(__trace__, "x", x), "", 0))`,
			},
			expectAbsent: []string{
				`trace.Argument(__trace__, 2`,
			},
		},
		{
			description: "untyped constants stay in place",
			code: `
package main

func run() int32 {
	var x int32 = 5
	return x
}
`,
			expectContains: []string{
				`var x int32 = 5`,
				`return trace.Access(__trace__, "x", x)`,
			},
			expectAbsent: []string{
				`trace.Assign(__trace__, trace.Targets(trace.Name("x")), 5)`,
			},
		},
		{
			description: "builtins are not wrapped as values",
			code: `
package main

func run(s []int) int {
	return len(s)
}
`,
			expectContains: []string{
				`return len(trace.Access(__trace__, "s", s))`,
			},
			expectAbsent: []string{
				`trace.Function(__trace__, len`,
			},
		},
		{
			description: "comma ok producers announce the assignment only",
			code: `
package main

func run(m map[string]int, k string) int {
	v, ok := m[k]
	if !ok {
		return 0
	}
	return v
}
`,
			expectContains: []string{
				`trace.AssignValues(__trace__, trace.Targets(trace.Seq(trace.Name("v"), trace.Name("ok"))), __tmp0, __tmp1)`,
				`v, ok := __tmp0, __tmp1`,
			},
			expectAbsent: []string{
				`trace.ReturnValuesBoxed`,
			},
		},
	}
	for _, tc := range tests {
		rewritten, err := RewriteSource(tc.code, "example.go")
		if !assert.Nil(t, err, tc.description) {
			continue
		}
		for _, fragment := range tc.expectContains {
			assert.Contains(t, rewritten, fragment, tc.description)
		}
		for _, fragment := range tc.expectAbsent {
			assert.NotContains(t, rewritten, fragment, tc.description)
		}
	}
}

func TestRewriteSourceUnsupportedTargets(t *testing.T) {
	code := `
package main

type box struct {
	n int
}

func run(b *box, v int) {
	b.n = v
}
`
	_, err := RewriteSource(code, "example.go")
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "unsupported assignment target")
		assert.Contains(t, err.Error(), "b.n")
	}
}

func TestRewriteSourceTracerName(t *testing.T) {
	code := `
package main

func run(x int) int {
	return x
}
`
	rewritten, err := RewriteSource(code, "example.go", WithTracerName("tr"))
	assert.Nil(t, err)
	assert.Contains(t, rewritten, `trace.Access(tr, "x", x)`)
	assert.False(t, strings.Contains(rewritten, "__trace__"))
}

func TestRewriteSourceUnresolvedCalls(t *testing.T) {
	// missing type info must degrade, not fail
	code := `
package main

func run() {
	undeclared()
}
`
	rewritten, err := RewriteSource(code, "example.go")
	assert.Nil(t, err)
	assert.Contains(t, rewritten, "undeclared")
}
