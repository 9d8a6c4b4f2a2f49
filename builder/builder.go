package builder

import (
	"reflect"
	"strconv"

	"github.com/viant/flowtrace/graph"
	"github.com/viant/flowtrace/trace"
)

// Builder folds an ordered trace event stream into a flow graph. Nodes are
// performed calls and edges are objects flowing between them: the incoming
// edges of a node carry its arguments, the outgoing edges its return values
// and mutated arguments. Calls whose bodies were traced become composite
// nodes holding a nested flow graph.
//
// A call is treated as pure, mutating none of its arguments, unless an
// annotation or a WithImpure option says otherwise.
type Builder struct {
	tracker   trace.Tracker
	annotator Annotator
	impure    map[string]map[string]bool
	names     map[string]int
	stack     []*callContext
}

// portRef locates the output port an object was last produced at.
type portRef struct {
	node string
	port string
}

// callContext is the builder state for one traced scope.
type callContext struct {
	call      *trace.CallEvent
	node      *graph.Node
	graph     *graph.Graph // nil inside an atomic call
	remaining int
	args      []argRecord
	ann       *Annotation

	// outputTable maps object identity to the port that last produced the
	// object within this scope. At any time an object is the output of at
	// most one node: there is at most one edge into the output sentinel
	// carrying it.
	outputTable map[string]portRef

	// eventTable complements object tracking for untrackable values: it maps
	// a producing event to the port its value came from.
	eventTable map[trace.Event]portRef
}

type argRecord struct {
	name  string
	value any
}

// New creates a flow graph builder.
func New(options ...Option) *Builder {
	b := &Builder{
		tracker: trace.NewObjectTracker(),
		impure:  map[string]map[string]bool{},
	}
	for _, option := range options {
		option(b)
	}
	b.Reset()
	return b
}

// Reset discards all accumulated state and starts an empty root graph.
func (b *Builder) Reset() {
	b.names = map[string]int{}
	b.stack = []*callContext{newContext(nil, nil, graph.New())}
}

// Graph returns a copy of the root flow graph built so far.
func (b *Builder) Graph() *graph.Graph {
	return b.stack[0].graph.Copy()
}

// Listener adapts the builder for direct registration on a tracer.
func (b *Builder) Listener() trace.Listener {
	return b.PushEvent
}

// PushEvent folds one trace event into the graph. Events must arrive in the
// order the tracer emits them; a return that does not match an open call
// panics. Access, assignment and deletion events carry no object flow and are
// ignored.
func (b *Builder) PushEvent(event trace.Event) {
	switch actual := event.(type) {
	case *trace.CallEvent:
		b.pushCall(actual)
	case *trace.ArgumentEvent:
		b.pushArgument(actual)
	case *trace.ReturnEvent:
		b.pushReturn(actual)
	}
}

func newContext(call *trace.CallEvent, node *graph.Node, g *graph.Graph) *callContext {
	return &callContext{
		call:        call,
		node:        node,
		graph:       g,
		outputTable: map[string]portRef{},
		eventTable:  map[trace.Event]portRef{},
	}
}

func (b *Builder) top() *callContext {
	return b.stack[len(b.stack)-1]
}

func (b *Builder) pushCall(call *trace.CallEvent) {
	parent := b.top()
	if parent.graph == nil {
		panic("builder: call event inside atomic call " + parent.call.Function.FullName())
	}
	ann := b.notateFunction(call.Function)

	node := &graph.Node{
		ID:       b.nodeName(call.Function.QualName),
		Module:   call.Function.Module,
		QualName: call.Function.QualName,
	}
	if ann != nil {
		node.Annotation = ann.Key
		node.AnnotationKind = "function"
	}
	parent.graph.AddNode(node)

	child := newContext(call, node, nil)
	child.remaining = call.NumArgs
	child.ann = ann
	if !call.Function.Atomic {
		nested := graph.New()
		node.Graph = nested
		child.graph = nested
	}
	b.stack = append(b.stack, child)
}

func (b *Builder) pushArgument(arg *trace.ArgumentEvent) {
	child := b.top()
	if child.call == nil || child.remaining <= 0 {
		panic("builder: argument without open call")
	}
	parent := b.stack[len(b.stack)-2]

	name := arg.Name
	if name == "" {
		name = strconv.Itoa(len(child.args))
	}
	child.args = append(child.args, argRecord{name: name, value: arg.Value})
	child.remaining--

	id, _ := b.tracker.Track(arg.Value)

	port := &graph.Port{Name: name, Kind: graph.PortInput, ObjectID: id}
	if value, ok := primitiveValue(arg.Value); ok {
		port.Value = value
	}
	port.Annotation = b.notateObject(arg.Value)
	if child.ann != nil {
		port.AnnotationIndex = slotIndex(child.ann.Inputs, name)
	}
	child.node.SetPort(port)

	// Wire the argument to its producer: the node that last output this
	// object, or failing identity, the node the producing event came from.
	var src portRef
	found := false
	if id != "" {
		src, found = parent.outputTable[id]
	} else if arg.Producer != nil {
		src, found = parent.eventTable[arg.Producer]
	}
	switch {
	case found:
		parent.graph.AddEdge(src.node, child.node.ID, graph.EdgeData{
			ObjectID:   id,
			SourcePort: src.port,
			TargetPort: name,
			Annotation: b.notateObject(arg.Value),
		})
	case id != "":
		// A tracked object with no known producer is an external input.
		parent.graph.AddEdge(parent.graph.InputNode(), child.node.ID, graph.EdgeData{
			ObjectID:   id,
			TargetPort: name,
			Annotation: b.notateObject(arg.Value),
		})
	}
}

func (b *Builder) pushReturn(ret *trace.ReturnEvent) {
	child := b.top()
	if child.call == nil {
		panic("builder: return without open call")
	}
	if child.remaining > 0 {
		panic("builder: return before all arguments of " + child.call.Function.FullName())
	}
	b.stack = b.stack[:len(b.stack)-1]
	parent := b.top()

	// Outputs for the return value or values.
	if ret.MultipleValues {
		values, _ := ret.Value.([]any)
		for i, value := range values {
			port := "__return__." + strconv.Itoa(i)
			if id, ok := b.tracker.Track(value); ok {
				b.setOutput(parent, child.node.ID, port, id, value)
			}
			b.setReturnPort(child.node, port, value)
		}
	} else if ret.Value != nil {
		if id, ok := b.tracker.Track(ret.Value); ok {
			b.setOutput(parent, child.node.ID, "__return__", id, ret.Value)
		}
		b.setReturnPort(child.node, "__return__", ret.Value)
	}

	// Outputs for mutated arguments. The mutated port gets a distinct name
	// so input and output ports never collide.
	for _, arg := range child.args {
		id, ok := b.tracker.ID(arg.value)
		if !ok || b.isPure(child, arg.name) {
			continue
		}
		port := arg.name + "!"
		outPort := &graph.Port{Name: port, Kind: graph.PortOutput, ObjectID: id}
		if child.ann != nil {
			outPort.AnnotationIndex = slotIndex(child.ann.Outputs, arg.name)
		}
		child.node.SetPort(outPort)
		b.setOutput(parent, child.node.ID, port, id, arg.value)
	}

	// A multi-value return has no single port for the whole event; its
	// values wire through the identity table only.
	if !ret.MultipleValues {
		parent.eventTable[ret] = portRef{node: child.node.ID, port: "__return__"}
	}
}

// setOutput records the object as the output of the given port, superseding
// whichever node output it previously.
func (b *Builder) setOutput(context *callContext, node, port, id string, value any) {
	g := context.graph
	if old, ok := context.outputTable[id]; ok {
		for _, edge := range g.OutEdges(old.node) {
			if edge.Target == g.OutputNode() && edge.Data.ObjectID == id {
				g.RemoveEdge(edge.Source, edge.Target, edge.Key)
				break
			}
		}
	}
	context.outputTable[id] = portRef{node: node, port: port}
	g.AddEdge(node, g.OutputNode(), graph.EdgeData{
		ObjectID:   id,
		SourcePort: port,
		Annotation: b.notateObject(value),
	})
}

func (b *Builder) setReturnPort(node *graph.Node, name string, value any) {
	port := &graph.Port{Name: name, Kind: graph.PortOutput}
	if id, ok := b.tracker.ID(value); ok {
		port.ObjectID = id
	}
	if primitive, ok := primitiveValue(value); ok {
		port.Value = primitive
	}
	port.Annotation = b.notateObject(value)
	node.SetPort(port)
}

// isPure reports whether the call leaves the named argument unmutated. The
// default is pure; annotations and WithImpure overrides flip it per argument.
func (b *Builder) isPure(context *callContext, argName string) bool {
	if context.ann != nil && slotIndex(context.ann.Outputs, argName) > 0 {
		return false
	}
	if set := b.impure[context.call.Function.FullName()]; set[argName] {
		return false
	}
	return true
}

func (b *Builder) notateFunction(fn *trace.FuncInfo) *Annotation {
	if b.annotator == nil {
		return nil
	}
	return b.annotator.NotateFunction(fn)
}

func (b *Builder) notateObject(value any) string {
	if b.annotator == nil {
		return ""
	}
	if note := b.annotator.NotateObject(value); note != nil {
		return note.Key
	}
	return ""
}

// nodeName assigns a node name unique across the root graph and every nested
// graph, deterministic for a given event order.
func (b *Builder) nodeName(base string) string {
	b.names[base]++
	return base + ":" + strconv.Itoa(b.names[base])
}

// slotIndex returns the 1-based position of name in slots, or 0.
func slotIndex(slots []string, name string) int {
	for i, slot := range slots {
		if slot == name {
			return i + 1
		}
	}
	return 0
}

// primitiveValue reports scalar values worth capturing on ports. Everything
// else is represented by identity alone.
func primitiveValue(v any) (any, bool) {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return v, true
	default:
		return nil, false
	}
}
