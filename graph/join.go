package graph

// Join composes two flow graphs captured as consecutive execution phases of
// the same scope. Objects escaping first and re-entering second under the same
// identity are connected directly, bypassing both graphs' sentinels. Neither
// input is modified.
func Join(first, second *Graph) *Graph {
	g := first.Copy()

	// Output table: object identity -> edge still reaching the output
	// sentinel of the first graph.
	outputTable := map[string]*Edge{}
	for _, edge := range g.InEdges(g.OutputNode()) {
		outputTable[edge.Data.ObjectID] = edge
	}

	CopyInto(second, g)

	// Wire inputs of the second graph. Objects produced by the first graph
	// connect to their true producer; the rest are external inputs at the
	// composed level too.
	for _, edge := range second.OutEdges(second.InputNode()) {
		if out, ok := outputTable[edge.Data.ObjectID]; ok {
			data := edge.Data
			data.SourcePort = out.Data.SourcePort
			g.AddEdge(out.Source, edge.Target, data)
		} else {
			g.AddEdge(g.InputNode(), edge.Target, edge.Data)
		}
	}

	// Wire outputs of the second graph, superseding any stale first-side
	// output edge for the same object.
	for _, edge := range second.InEdges(second.OutputNode()) {
		if out, ok := outputTable[edge.Data.ObjectID]; ok {
			g.RemoveEdge(out.Source, out.Target, out.Key)
		}
		g.AddEdge(edge.Source, g.OutputNode(), edge.Data)
	}
	return g
}
