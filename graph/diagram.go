package graph

import "strconv"

// Outputs selects how output edges are pruned when a flow graph is prepared
// for interchange.
type Outputs string

const (
	// OutputsAll keeps every output edge.
	OutputsAll Outputs = "all"
	// OutputsSimplify removes output edges for objects that also have a
	// consumer inside the graph, leaving only the unused outputs.
	OutputsSimplify Outputs = "simplify"
	// OutputsNone removes every output edge.
	OutputsNone Outputs = "none"
)

const rootNodeID = "__root__"

// Diagram is the box-and-wire form of a flow graph: a single outer box node
// containing the graph, with port names assigned to its external inputs and
// outputs. The shape is what generic graph interchange writers consume; the
// serialization itself happens elsewhere.
type Diagram struct {
	Box *Node `yaml:"box" msgpack:"box"`
}

// ToDiagram wraps a copy of g as the contents of one outer box node and
// assigns port names. Every distinct object identity flowing out of the input
// sentinel gets one input port (in:1, in:2, ... in first-seen order; objects
// fanning out to several consumers share one port). Every surviving edge into
// the output sentinel gets a fresh output port (out:1, out:2, ... in encounter
// order), subject to the pruning policy.
func ToDiagram(g *Graph, outputs Outputs) *Diagram {
	g = g.Copy()
	box := &Node{ID: rootNodeID, Graph: g}

	ninputs := 0
	inputMap := map[string]string{}
	for _, edge := range g.OutEdges(g.InputNode()) {
		port, ok := inputMap[edge.Data.ObjectID]
		if !ok {
			ninputs++
			port = "in:" + strconv.Itoa(ninputs)
			inputMap[edge.Data.ObjectID] = port
			box.SetPort(&Port{Name: port, Kind: PortInput, Annotation: edge.Data.Annotation})
		}
		edge.Data.SourcePort = port
	}

	noutputs := 0
	for _, edge := range g.InEdges(g.OutputNode()) {
		if outputs == OutputsNone ||
			(outputs == OutputsSimplify && ncopies(g, edge.Source, edge.Data.ObjectID) > 0) {
			g.RemoveEdge(edge.Source, edge.Target, edge.Key)
			continue
		}
		noutputs++
		port := "out:" + strconv.Itoa(noutputs)
		edge.Data.TargetPort = port
		box.SetPort(&Port{Name: port, Kind: PortOutput, Annotation: edge.Data.Annotation})
	}
	return &Diagram{Box: box}
}

// ncopies counts the copies of an object flowing out of a node, excluding the
// output sentinel.
func ncopies(g *Graph, id, objectID string) int {
	n := 0
	for _, edge := range g.OutEdges(id) {
		if edge.Target != g.OutputNode() && edge.Data.ObjectID == objectID {
			n++
		}
	}
	return n
}

// FromDiagram is the inverse structural transform of ToDiagram: it unwraps the
// outer box and strips the port names assigned at serialization time. The
// returned graph is the diagram's contained graph, mutated in place.
func FromDiagram(d *Diagram) *Graph {
	if d == nil || d.Box == nil || d.Box.Graph == nil {
		panic("graph: diagram without contents")
	}
	g := d.Box.Graph
	for _, edge := range g.OutEdges(g.InputNode()) {
		edge.Data.SourcePort = ""
	}
	for _, edge := range g.InEdges(g.OutputNode()) {
		edge.Data.TargetPort = ""
	}
	return g
}
