package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	g := New()
	assert.EqualValues(t, 2, len(g.Nodes()), "only the sentinels")
	assert.Empty(t, g.CallNodes())
	assert.NotNil(t, g.Node(g.InputNode()))
	assert.NotNil(t, g.Node(g.OutputNode()))
	assert.NotEqual(t, g.InputNode(), g.OutputNode())
}

func TestAddNode(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: "f:1", QualName: "f"})
	g.AddNode(&Node{ID: "g:1", QualName: "g"})

	nodes := g.CallNodes()
	assert.EqualValues(t, 2, len(nodes))
	assert.EqualValues(t, "f:1", nodes[0].ID, "insertion order is preserved")
	assert.EqualValues(t, "g:1", nodes[1].ID)

	assert.Panics(t, func() {
		g.AddNode(&Node{ID: "f:1"})
	}, "duplicate node")
	assert.Panics(t, func() {
		g.AddNode(&Node{})
	}, "node without ID")
}

func TestAddEdge(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: "f:1"})
	g.AddNode(&Node{ID: "g:1"})

	first := g.AddEdge("f:1", "g:1", EdgeData{ObjectID: "1"})
	second := g.AddEdge("f:1", "g:1", EdgeData{ObjectID: "2"})
	other := g.AddEdge("g:1", g.OutputNode(), EdgeData{ObjectID: "3"})

	assert.EqualValues(t, 0, first.Key)
	assert.EqualValues(t, 1, second.Key, "parallel edges get distinct keys")
	assert.EqualValues(t, 0, other.Key, "keys are per node pair")

	assert.Same(t, second, g.Edge("f:1", "g:1", 1))
	assert.Nil(t, g.Edge("f:1", "g:1", 2))

	assert.EqualValues(t, 2, len(g.OutEdges("f:1")))
	assert.EqualValues(t, 2, len(g.InEdges("g:1")))
	assert.EqualValues(t, 1, len(g.InEdges(g.OutputNode())))

	assert.Panics(t, func() {
		g.AddEdge("f:1", "missing", EdgeData{})
	})
}

func TestRemoveNode(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: "f:1"})
	g.AddNode(&Node{ID: "g:1"})
	g.AddEdge(g.InputNode(), "f:1", EdgeData{ObjectID: "1"})
	g.AddEdge("f:1", "g:1", EdgeData{ObjectID: "2"})
	g.AddEdge("g:1", g.OutputNode(), EdgeData{ObjectID: "3"})

	g.RemoveNode("f:1")

	assert.Nil(t, g.Node("f:1"))
	assert.EqualValues(t, 1, len(g.Edges()), "edges touching the node go with it")
	assert.EqualValues(t, "g:1", g.Edges()[0].Source)

	assert.NotPanics(t, func() {
		g.RemoveNode("f:1")
	}, "removing an absent node is a no-op")
	assert.Panics(t, func() {
		g.RemoveNode(g.InputNode())
	})
	assert.Panics(t, func() {
		g.RemoveNode(g.OutputNode())
	})
}

func TestRemoveEdge(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: "f:1"})
	g.AddNode(&Node{ID: "g:1"})
	g.AddEdge("f:1", "g:1", EdgeData{ObjectID: "1"})
	g.AddEdge("f:1", "g:1", EdgeData{ObjectID: "2"})

	assert.True(t, g.RemoveEdge("f:1", "g:1", 0))
	assert.False(t, g.RemoveEdge("f:1", "g:1", 0), "already removed")
	assert.EqualValues(t, 1, len(g.Edges()))
	assert.EqualValues(t, "2", g.Edges()[0].Data.ObjectID)

	replacement := g.AddEdge("f:1", "g:1", EdgeData{ObjectID: "3"})
	assert.EqualValues(t, 2, replacement.Key, "keys are not recycled")
}

func TestNodePorts(t *testing.T) {
	node := &Node{ID: "f:1"}
	node.SetPort(&Port{Name: "x", Kind: PortInput})
	node.SetPort(&Port{Name: "y", Kind: PortInput})
	node.SetPort(&Port{Name: "x", Kind: PortInput, ObjectID: "1"})

	assert.EqualValues(t, 2, len(node.Ports), "same-name port replaces in place")
	assert.EqualValues(t, "x", node.Ports[0].Name)
	assert.EqualValues(t, "1", node.Port("x").ObjectID)
	assert.Nil(t, node.Port("z"))
}

func TestCopy(t *testing.T) {
	g := New()
	nested := New()
	nested.AddNode(&Node{ID: "inner:1", QualName: "inner"})
	g.AddNode(&Node{
		ID:       "outer:1",
		QualName: "outer",
		Ports:    []*Port{{Name: "x", Kind: PortInput}},
		Graph:    nested,
	})
	g.AddEdge(g.InputNode(), "outer:1", EdgeData{ObjectID: "1", TargetPort: "x"})

	clone := g.Copy()
	clone.Node("outer:1").QualName = "changed"
	clone.Node("outer:1").Ports[0].Name = "changed"
	clone.Node("outer:1").Graph.AddNode(&Node{ID: "extra:1"})
	clone.Edges()[0].Data.ObjectID = "changed"

	assert.EqualValues(t, "outer", g.Node("outer:1").QualName)
	assert.EqualValues(t, "x", g.Node("outer:1").Ports[0].Name)
	assert.EqualValues(t, 1, len(g.Node("outer:1").Graph.CallNodes()))
	assert.EqualValues(t, "1", g.Edges()[0].Data.ObjectID)
}

func TestCopyInto(t *testing.T) {
	source := New()
	source.AddNode(&Node{ID: "f:1"})
	source.AddNode(&Node{ID: "g:1"})
	source.AddEdge(source.InputNode(), "f:1", EdgeData{ObjectID: "1"})
	source.AddEdge("f:1", "g:1", EdgeData{ObjectID: "2"})
	source.AddEdge("g:1", source.OutputNode(), EdgeData{ObjectID: "3"})

	dest := New()
	dest.AddNode(&Node{ID: "h:1"})
	CopyInto(source, dest)

	assert.EqualValues(t, 3, len(dest.CallNodes()))
	edges := dest.Edges()
	assert.EqualValues(t, 1, len(edges), "sentinel edges are not copied")
	assert.EqualValues(t, "f:1", edges[0].Source)
	assert.EqualValues(t, "g:1", edges[0].Target)
	assert.EqualValues(t, "2", edges[0].Data.ObjectID)
}
