package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/viant/flowtrace/graph"
	"github.com/viant/flowtrace/record"
	"github.com/viant/flowtrace/trace"
)

type dataset struct {
	rows int
}

func load() *dataset { return &dataset{rows: 2} }

func count(d *dataset) int { return d.rows }

// recordStream traces a two-call pipeline and writes its record stream to a
// temporary file.
func recordStream(t *testing.T) string {
	t.Helper()
	recorder := record.NewRecorder()
	tr := trace.New(trace.WithListener(recorder.Listener()))

	d := trace.Return(tr, trace.Function(tr, load, 0)(), false)
	trace.Return(tr, trace.Function(tr, count, 1)(trace.Argument(tr, d, "", 0)), false)

	var buf bytes.Buffer
	assert.Nil(t, record.Write(&buf, recorder.Records()))
	path := filepath.Join(t.TempDir(), "events.msgpack")
	assert.Nil(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// runGraphCommand invokes the graph command with reset flag state, capturing
// its output.
func runGraphCommand(t *testing.T, path, format, outputs string) (string, error) {
	t.Helper()
	graphFormat = format
	graphOutput = ""
	graphOutputs = string(graph.OutputsSimplify)
	graphFlatten = false
	flag := graphCmd.Flags().Lookup("outputs")
	flag.Changed = false
	if outputs != "" {
		graphOutputs = outputs
		flag.Changed = true
	}

	var out bytes.Buffer
	graphCmd.SetOut(&out)
	graphCmd.SetContext(context.Background())
	err := runGraph(graphCmd, []string{path})
	return out.String(), err
}

func TestGraphCommandWrapsEveryFormat(t *testing.T) {
	path := recordStream(t)

	out, err := runGraphCommand(t, path, "yaml", string(graph.OutputsAll))
	assert.Nil(t, err)
	assert.Contains(t, out, "box:")
	assert.Contains(t, out, "out:1")

	out, err = runGraphCommand(t, path, "msgpack", string(graph.OutputsAll))
	assert.Nil(t, err)
	d := &graph.Diagram{}
	assert.Nil(t, msgpack.Unmarshal([]byte(out), d))
	if assert.NotNil(t, d.Box) {
		assert.NotNil(t, d.Box.Port("out:1"), "msgpack output is wrapped like yaml")
	}

	out, err = runGraphCommand(t, path, "msgpack", string(graph.OutputsNone))
	assert.Nil(t, err)
	d = &graph.Diagram{}
	assert.Nil(t, msgpack.Unmarshal([]byte(out), d))
	if assert.NotNil(t, d.Box) {
		assert.Nil(t, d.Box.Port("out:1"), "pruned outputs get no ports")
	}
}

func TestGraphCommandDigest(t *testing.T) {
	path := recordStream(t)

	out, err := runGraphCommand(t, path, "digest", "")
	assert.Nil(t, err)
	assert.Regexp(t, `^[0-9a-f]{16}\n$`, out)

	_, err = runGraphCommand(t, path, "digest", string(graph.OutputsAll))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "--outputs")
}
