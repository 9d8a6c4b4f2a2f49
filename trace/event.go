package trace

import "strings"

// Event is one observation in the ordered trace of an execution. It is a
// closed union: the only implementations are CallEvent, ArgumentEvent,
// ReturnEvent, AccessEvent, AssignEvent and DeleteEvent, so consumers can
// type-switch exhaustively.
//
// Events for a given expression are delivered in the same order the
// expression's sub-parts evaluate in the original program, one contiguous
// group per performed call: the CallEvent, one ArgumentEvent per argument in
// evaluation order, any events from the callee's body, then the ReturnEvent.
type Event interface {
	isEvent()
}

// FuncInfo identifies a called function.
type FuncInfo struct {
	// Module is the import path of the package defining the function.
	Module string `yaml:"module,omitempty"`
	// QualName is the name qualified within the package, e.g. "Client.Do".
	QualName string `yaml:"qualName,omitempty"`
	// Atomic marks a function whose body is not traced, as decided by the
	// tracing policy.
	Atomic bool `yaml:"atomic,omitempty"`
}

// Name returns the short name of the function.
func (f *FuncInfo) Name() string {
	if i := strings.LastIndex(f.QualName, "."); i >= 0 {
		return f.QualName[i+1:]
	}
	return f.QualName
}

// FullName returns the module-qualified name of the function.
func (f *FuncInfo) FullName() string {
	if f.Module == "" {
		return f.QualName
	}
	return f.Module + "." + f.QualName
}

// CallEvent announces a call about to be performed, once the callee and every
// argument have been evaluated.
type CallEvent struct {
	Function *FuncInfo
	NumArgs  int
}

// ArgumentEvent announces one evaluated argument. Name is the keyword name if
// any; Stars is 0 for an ordinary argument, 1 for a splat bundle and 2 for a
// keyword bundle. Producer is the event that produced the value, when the
// argument expression was itself a rewritten call or access.
type ArgumentEvent struct {
	Value    any
	Name     string
	Stars    int
	Producer Event
}

// ReturnEvent announces the result of a call. MultipleValues is true when the
// call site destructures the result into independent values, in which case
// Value holds a []any of them.
type ReturnEvent struct {
	Value          any
	MultipleValues bool
}

// AccessEvent announces a read of a named variable.
type AccessEvent struct {
	Name  string
	Value any
}

// AssignEvent announces an assignment, emitted before the store takes effect.
// Producer carries the provenance of the right-hand side when available.
type AssignEvent struct {
	Targets  []Target
	Value    any
	Producer Event
}

// DeleteEvent announces names about to be removed, emitted before the
// deletion executes.
type DeleteEvent struct {
	Names []string
}

func (*CallEvent) isEvent()     {}
func (*ArgumentEvent) isEvent() {}
func (*ReturnEvent) isEvent()   {}
func (*AccessEvent) isEvent()   {}
func (*AssignEvent) isEvent()   {}
func (*DeleteEvent) isEvent()   {}

// Target is one assignment target: either a bare name or a nested sequence of
// targets for a destructuring store.
type Target struct {
	Name  string   `yaml:"name,omitempty"`
	Elems []Target `yaml:"elems,omitempty"`
}

// Name makes a bare-name assignment target.
func Name(name string) Target {
	return Target{Name: name}
}

// Seq makes a destructuring assignment target.
func Seq(elems ...Target) Target {
	return Target{Elems: elems}
}

// Targets collects assignment targets; rewritten code calls it to build the
// target list of an AssignEvent.
func Targets(targets ...Target) []Target {
	return targets
}

// Compound reports whether any target is a destructuring sequence rather than
// a bare name.
func Compound(targets []Target) bool {
	for _, target := range targets {
		if len(target.Elems) > 0 {
			return true
		}
	}
	return false
}
