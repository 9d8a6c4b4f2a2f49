package graph

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// snapshot is the serialized shape of a graph. Sentinels are implied and only
// call nodes are listed; edges may reference the sentinel IDs.
type snapshot struct {
	Input  string  `yaml:"input" msgpack:"input"`
	Output string  `yaml:"output" msgpack:"output"`
	Nodes  []*Node `yaml:"nodes" msgpack:"nodes"`
	Edges  []*Edge `yaml:"edges" msgpack:"edges"`
}

func (g *Graph) snapshot() *snapshot {
	return &snapshot{
		Input:  g.input,
		Output: g.output,
		Nodes:  g.CallNodes(),
		Edges:  g.Edges(),
	}
}

func (g *Graph) restore(snap *snapshot) error {
	restored := New()
	if snap.Input != restored.input || snap.Output != restored.output {
		return fmt.Errorf("graph: unexpected sentinel IDs %q, %q", snap.Input, snap.Output)
	}
	for _, node := range snap.Nodes {
		restored.AddNode(node)
	}
	for _, edge := range snap.Edges {
		if restored.nodes[edge.Source] == nil || restored.nodes[edge.Target] == nil {
			return fmt.Errorf("graph: edge references unknown node %q -> %q", edge.Source, edge.Target)
		}
		added := restored.AddEdge(edge.Source, edge.Target, edge.Data)
		added.Key = edge.Key
		pair := [2]string{edge.Source, edge.Target}
		if next := edge.Key + 1; restored.keys[pair] < next {
			restored.keys[pair] = next
		}
	}
	*g = *restored
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (g *Graph) MarshalYAML() (interface{}, error) {
	return g.snapshot(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (g *Graph) UnmarshalYAML(value *yaml.Node) error {
	snap := &snapshot{}
	if err := value.Decode(snap); err != nil {
		return err
	}
	return g.restore(snap)
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (g *Graph) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(g.snapshot())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (g *Graph) DecodeMsgpack(dec *msgpack.Decoder) error {
	snap := &snapshot{}
	if err := dec.Decode(snap); err != nil {
		return err
	}
	return g.restore(snap)
}
