package builder

import "github.com/viant/flowtrace/trace"

// Annotation describes a function or object in terms of an external ontology.
// Key identifies the annotation; Inputs and Outputs name the function
// arguments covered by the ontology, with Outputs listing the arguments the
// function mutates.
type Annotation struct {
	Key     string   `yaml:"key"`
	Inputs  []string `yaml:"inputs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`
}

// Annotator supplies annotations for called functions and for objects flowing
// between them. Either method may return nil when nothing is known.
type Annotator interface {
	NotateFunction(fn *trace.FuncInfo) *Annotation
	NotateObject(v any) *Annotation
}

// TableAnnotator is an Annotator backed by static lookup tables. Functions are
// keyed by their module-qualified name; objects are never annotated.
type TableAnnotator struct {
	Functions map[string]*Annotation `yaml:"functions,omitempty"`
}

// NotateFunction implements Annotator.
func (a *TableAnnotator) NotateFunction(fn *trace.FuncInfo) *Annotation {
	if a == nil || fn == nil {
		return nil
	}
	return a.Functions[fn.FullName()]
}

// NotateObject implements Annotator.
func (a *TableAnnotator) NotateObject(v any) *Annotation {
	return nil
}
