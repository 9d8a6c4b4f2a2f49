package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/viant/flowtrace/builder"
	"github.com/viant/flowtrace/graph"
	"github.com/viant/flowtrace/record"
	"github.com/viant/flowtrace/trace"
)

var (
	graphFormat  string
	graphOutput  string
	graphFlatten bool
	graphOutputs string
)

func init() {
	graphCmd.Flags().StringVar(&graphFormat, "format", "yaml", "output format (yaml|msgpack|digest)")
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "write the graph to this location instead of stdout")
	graphCmd.Flags().BoolVar(&graphFlatten, "flatten", false, "inline nested graphs before output")
	graphCmd.Flags().StringVar(&graphOutputs, "outputs", string(graph.OutputsSimplify), "output edge pruning (all|simplify|none)")
}

var graphCmd = &cobra.Command{
	Use:   "graph [flags] <trace.msgpack>",
	Short: "Build a flow graph from a recorded trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	fs := afs.New()
	ctx := cmd.Context()
	data, err := fs.DownloadWithURL(ctx, args[0])
	if err != nil {
		return fmt.Errorf("read %v: %w", args[0], err)
	}
	records, err := record.Read(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %v: %w", args[0], err)
	}

	switch graph.Outputs(graphOutputs) {
	case graph.OutputsAll, graph.OutputsSimplify, graph.OutputsNone:
	default:
		return fmt.Errorf("unknown outputs policy %q", graphOutputs)
	}

	b := builder.New(builder.WithTracker(trace.NewRefTracker()))
	if err := record.Replay(records, b.Listener()); err != nil {
		return err
	}
	g := b.Graph()
	if graphFlatten {
		g = graph.Flatten(g)
	}

	var out []byte
	switch graphFormat {
	case "yaml":
		d := graph.ToDiagram(g, graph.Outputs(graphOutputs))
		if out, err = yaml.Marshal(d); err != nil {
			return err
		}
	case "msgpack":
		d := graph.ToDiagram(g, graph.Outputs(graphOutputs))
		if out, err = msgpack.Marshal(d); err != nil {
			return err
		}
	case "digest":
		// The digest covers the raw graph, not a wrapped diagram.
		if cmd.Flags().Changed("outputs") {
			return fmt.Errorf("--outputs does not apply to format %q", graphFormat)
		}
		digest, err := graph.Fingerprint(g)
		if err != nil {
			return err
		}
		out = []byte(fmt.Sprintf("%016x\n", digest))
	default:
		return fmt.Errorf("unknown format %q", graphFormat)
	}

	if graphOutput == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	return fs.Upload(ctx, graphOutput, file.DefaultFileOsMode, bytes.NewReader(out))
}
