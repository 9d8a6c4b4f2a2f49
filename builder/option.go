package builder

import "github.com/viant/flowtrace/trace"

// Option configures a Builder.
type Option func(*Builder)

// WithTracker sets the object identity oracle. To correlate objects across
// the tracer and the builder, pass the tracer's own Tracker.
func WithTracker(tracker trace.Tracker) Option {
	return func(b *Builder) {
		b.tracker = tracker
	}
}

// WithAnnotator sets the annotator consulted for called functions and flowing
// objects.
func WithAnnotator(annotator Annotator) Option {
	return func(b *Builder) {
		b.annotator = annotator
	}
}

// WithImpure marks arguments of the named function as mutated by the call, in
// addition to any annotation. fullName is the module-qualified function name.
func WithImpure(fullName string, args ...string) Option {
	return func(b *Builder) {
		set := b.impure[fullName]
		if set == nil {
			set = map[string]bool{}
			b.impure[fullName] = set
		}
		for _, arg := range args {
			set[arg] = true
		}
	}
}
