package graph

// Warning: the sentinel names are not a public interface. Always access the
// input and output nodes through the InputNode and OutputNode accessors.
const (
	inputNodeID  = "__in__"
	outputNodeID = "__out__"
)

// PortKind distinguishes input ports from output ports on a node.
type PortKind string

const (
	PortInput  PortKind = "input"
	PortOutput PortKind = "output"
)

// Port describes a named attachment point on a call node or on the outer box
// of a diagram.
type Port struct {
	Name            string   `yaml:"name" msgpack:"name"`
	Kind            PortKind `yaml:"portkind,omitempty" msgpack:"portkind,omitempty"`
	ObjectID        string   `yaml:"id,omitempty" msgpack:"id,omitempty"`
	Value           any      `yaml:"value,omitempty" msgpack:"value,omitempty"`
	Annotation      string   `yaml:"annotation,omitempty" msgpack:"annotation,omitempty"`
	AnnotationIndex int      `yaml:"annotationIndex,omitempty" msgpack:"annotationIndex,omitempty"`
}

// Node represents one traced call in a flow graph.
type Node struct {
	ID             string  `yaml:"id" msgpack:"id"`
	Module         string  `yaml:"module,omitempty" msgpack:"module,omitempty"`
	QualName       string  `yaml:"qualName,omitempty" msgpack:"qualName,omitempty"`
	Ports          []*Port `yaml:"ports,omitempty" msgpack:"ports,omitempty"`
	Annotation     string  `yaml:"annotation,omitempty" msgpack:"annotation,omitempty"`
	AnnotationKind string  `yaml:"annotationKind,omitempty" msgpack:"annotationKind,omitempty"`
	// Graph is the nested flow graph of a composite node, i.e. a call whose
	// body was itself traced. A nested graph is owned exclusively by its node.
	Graph *Graph `yaml:"graph,omitempty" msgpack:"graph,omitempty"`
}

// Composite reports whether the node carries a nested flow graph.
func (n *Node) Composite() bool {
	return n.Graph != nil
}

// Port returns the named port, or nil.
func (n *Node) Port(name string) *Port {
	for _, port := range n.Ports {
		if port.Name == name {
			return port
		}
	}
	return nil
}

// SetPort adds a port, replacing an existing port with the same name while
// keeping its position.
func (n *Node) SetPort(port *Port) {
	for i, existing := range n.Ports {
		if existing.Name == port.Name {
			n.Ports[i] = port
			return
		}
	}
	n.Ports = append(n.Ports, port)
}

func (n *Node) copy() *Node {
	ret := *n
	ret.Ports = make([]*Port, 0, len(n.Ports))
	for _, port := range n.Ports {
		clone := *port
		ret.Ports = append(ret.Ports, &clone)
	}
	if n.Graph != nil {
		ret.Graph = n.Graph.Copy()
	}
	return &ret
}

// EdgeData carries the attributes of one object flowing along an edge. The
// ObjectID is a stable identity label: edges that carry the same object to
// multiple consumers share one ObjectID. SourcePort and TargetPort name the
// attachment points at either endpoint; prior to serialization, edges out of
// the input sentinel have no SourcePort and edges into the output sentinel
// have no TargetPort.
type EdgeData struct {
	ObjectID   string `yaml:"id,omitempty" msgpack:"id,omitempty"`
	SourcePort string `yaml:"sourceport,omitempty" msgpack:"sourceport,omitempty"`
	TargetPort string `yaml:"targetport,omitempty" msgpack:"targetport,omitempty"`
	Annotation string `yaml:"annotation,omitempty" msgpack:"annotation,omitempty"`
}

// Edge represents one object flowing from an output of Source to an input of
// Target. Key disambiguates parallel edges between the same pair of nodes.
type Edge struct {
	Source string   `yaml:"source" msgpack:"source"`
	Target string   `yaml:"target" msgpack:"target"`
	Key    int      `yaml:"key" msgpack:"key"`
	Data   EdgeData `yaml:"data" msgpack:"data"`
}

// Graph is an insertion-ordered directed multigraph over call nodes plus two
// sentinel nodes, the designated input and output. The sentinels are always
// present and never represent a real call.
type Graph struct {
	input  string
	output string
	nodes  map[string]*Node
	order  []string
	edges  []*Edge
	keys   map[[2]string]int
}

// New creates a new, empty flow graph holding only the two sentinel nodes.
func New() *Graph {
	g := &Graph{
		input:  inputNodeID,
		output: outputNodeID,
		nodes:  map[string]*Node{},
		keys:   map[[2]string]int{},
	}
	g.AddNode(&Node{ID: g.input})
	g.AddNode(&Node{ID: g.output})
	return g
}

// InputNode returns the ID of the designated input sentinel.
func (g *Graph) InputNode() string {
	return g.input
}

// OutputNode returns the ID of the designated output sentinel.
func (g *Graph) OutputNode() string {
	return g.output
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(node *Node) {
	if node.ID == "" {
		panic("graph: node without ID")
	}
	if _, ok := g.nodes[node.ID]; ok {
		panic("graph: duplicate node " + node.ID)
	}
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes, sentinels included, in insertion order.
func (g *Graph) Nodes() []*Node {
	ret := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		ret = append(ret, g.nodes[id])
	}
	return ret
}

// CallNodes returns the non-sentinel nodes in insertion order.
func (g *Graph) CallNodes() []*Node {
	ret := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		if id == g.input || id == g.output {
			continue
		}
		ret = append(ret, g.nodes[id])
	}
	return ret
}

// AddEdge adds an edge between existing nodes and returns it. The edge key is
// assigned per (source, target) pair, so parallel edges remain addressable.
func (g *Graph) AddEdge(source, target string, data EdgeData) *Edge {
	if g.nodes[source] == nil {
		panic("graph: unknown edge source " + source)
	}
	if g.nodes[target] == nil {
		panic("graph: unknown edge target " + target)
	}
	pair := [2]string{source, target}
	edge := &Edge{Source: source, Target: target, Key: g.keys[pair], Data: data}
	g.keys[pair] = edge.Key + 1
	g.edges = append(g.edges, edge)
	return edge
}

// RemoveEdge removes the edge identified by source, target and key. It reports
// whether an edge was removed.
func (g *Graph) RemoveEdge(source, target string, key int) bool {
	for i, edge := range g.edges {
		if edge.Source == source && edge.Target == target && edge.Key == key {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveNode removes a node together with every edge touching it. Sentinels
// cannot be removed.
func (g *Graph) RemoveNode(id string) {
	if id == g.input || id == g.output {
		panic("graph: cannot remove sentinel node")
	}
	if _, ok := g.nodes[id]; !ok {
		return
	}
	delete(g.nodes, id)
	for i, nodeID := range g.order {
		if nodeID == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	kept := g.edges[:0]
	for _, edge := range g.edges {
		if edge.Source == id || edge.Target == id {
			continue
		}
		kept = append(kept, edge)
	}
	g.edges = kept
}

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []*Edge {
	return append([]*Edge(nil), g.edges...)
}

// OutEdges returns the edges leaving the given node, in insertion order.
func (g *Graph) OutEdges(id string) []*Edge {
	var ret []*Edge
	for _, edge := range g.edges {
		if edge.Source == id {
			ret = append(ret, edge)
		}
	}
	return ret
}

// InEdges returns the edges entering the given node, in insertion order.
func (g *Graph) InEdges(id string) []*Edge {
	var ret []*Edge
	for _, edge := range g.edges {
		if edge.Target == id {
			ret = append(ret, edge)
		}
	}
	return ret
}

// Edge returns the edge identified by source, target and key, or nil.
func (g *Graph) Edge(source, target string, key int) *Edge {
	for _, edge := range g.edges {
		if edge.Source == source && edge.Target == target && edge.Key == key {
			return edge
		}
	}
	return nil
}

// Copy returns a deep copy of the graph. Node attributes, ports, nested graphs
// and edges are cloned; object IDs remain shared identity labels.
func (g *Graph) Copy() *Graph {
	ret := &Graph{
		input:  g.input,
		output: g.output,
		nodes:  make(map[string]*Node, len(g.nodes)),
		order:  append([]string(nil), g.order...),
		edges:  make([]*Edge, 0, len(g.edges)),
		keys:   make(map[[2]string]int, len(g.keys)),
	}
	for id, node := range g.nodes {
		ret.nodes[id] = node.copy()
	}
	for _, edge := range g.edges {
		clone := *edge
		ret.edges = append(ret.edges, &clone)
	}
	for pair, next := range g.keys {
		ret.keys[pair] = next
	}
	return ret
}

// CopyInto appends every non-sentinel node and every edge not touching a
// sentinel of source into dest, preserving all attributes. It never removes or
// rewrites existing content of dest.
func CopyInto(source, dest *Graph) {
	for _, node := range source.CallNodes() {
		dest.AddNode(node.copy())
	}
	for _, edge := range source.edges {
		if edge.Source == source.input || edge.Source == source.output ||
			edge.Target == source.input || edge.Target == source.output {
			continue
		}
		dest.AddEdge(edge.Source, edge.Target, edge.Data)
	}
}
