package graph

// Flatten recursively inlines every composite node's nested graph into the
// root, so the result contains only atomic call nodes. The input graph is not
// modified.
func Flatten(g *Graph) *Graph {
	return flatten(g.Copy())
}

func flatten(g *Graph) *Graph {
	for _, node := range g.CallNodes() {
		if !node.Composite() {
			continue
		}
		sub := flatten(node.Graph)
		inlineNode(g, node, sub)
	}
	return g
}

// inlineNode splices the already-flat nested graph sub into g in place of the
// composite node. Edges are buffered before any mutation so that the edge set
// is never modified while it is being iterated.
func inlineNode(g *Graph, node *Node, sub *Graph) {
	CopyInto(sub, g)

	incoming := g.InEdges(node.ID)
	outgoing := g.OutEdges(node.ID)

	type pending struct {
		source, target string
		data           EdgeData
	}
	var adds []pending

	// Re-wire the input objects of the nested graph. An object passed into the
	// composite call is redirected from the parent's incoming edge straight to
	// its internal consumer. Multiple parent edges may carry the same object
	// (the same object passed as more than one argument); they all originate
	// from the same node, so the first suffices.
	for _, subEdge := range sub.OutEdges(sub.InputNode()) {
		matched := false
		for _, parent := range incoming {
			if parent.Data.ObjectID == subEdge.Data.ObjectID {
				data := parent.Data
				data.TargetPort = subEdge.Data.TargetPort
				adds = append(adds, pending{parent.Source, subEdge.Target, data})
				matched = true
				break
			}
		}
		// The object was synthesized inside the nested graph with no
		// externally visible origin. It becomes an input of the parent.
		if !matched {
			adds = append(adds, pending{g.InputNode(), subEdge.Target, subEdge.Data})
		}
	}

	// Re-wire the output objects of the nested graph: connect each internal
	// producer directly to every external consumer of the composite node's
	// result. An output with no external consumer is dropped; it cannot escape
	// the flattened scope.
	for _, subEdge := range sub.InEdges(sub.OutputNode()) {
		for _, parent := range outgoing {
			if parent.Data.ObjectID == subEdge.Data.ObjectID {
				data := parent.Data
				data.SourcePort = subEdge.Data.SourcePort
				adds = append(adds, pending{subEdge.Source, parent.Target, data})
			}
		}
	}

	for _, add := range adds {
		g.AddEdge(add.source, add.target, add.data)
	}
	g.RemoveNode(node.ID)
}
