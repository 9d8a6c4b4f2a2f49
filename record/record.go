// Package record serializes trace event streams. A recorded stream captures
// the full observation order of an execution in a compact msgpack log that
// can be replayed later into any listener, typically a graph builder, without
// the original program or its objects.
package record

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/viant/flowtrace/trace"
)

// Record kinds, one per event type.
const (
	KindCall     = "call"
	KindArgument = "argument"
	KindReturn   = "return"
	KindAccess   = "access"
	KindAssign   = "assign"
	KindDelete   = "delete"
)

// Value is the serialized form of a traced value. Tracked objects are reduced
// to their identity label; primitive scalars are carried verbatim; everything
// else is opaque and serializes empty.
type Value struct {
	Ref    string `msgpack:"ref,omitempty" yaml:"ref,omitempty"`
	Scalar any    `msgpack:"scalar,omitempty" yaml:"scalar,omitempty"`
}

// Opaque stands in for a recorded value that was neither trackable nor a
// primitive scalar. Replayed events carry it where the live stream carried
// the real value, so listeners take the same paths on both streams.
type Opaque struct{}

// Record is the serialized form of one trace event. Producer references the
// producing event by its position in the stream; -1 means none.
type Record struct {
	Kind     string         `msgpack:"kind" yaml:"kind"`
	Module   string         `msgpack:"module,omitempty" yaml:"module,omitempty"`
	QualName string         `msgpack:"qualName,omitempty" yaml:"qualName,omitempty"`
	Atomic   bool           `msgpack:"atomic,omitempty" yaml:"atomic,omitempty"`
	NumArgs  int            `msgpack:"numArgs,omitempty" yaml:"numArgs,omitempty"`
	Name     string         `msgpack:"name,omitempty" yaml:"name,omitempty"`
	Stars    int            `msgpack:"stars,omitempty" yaml:"stars,omitempty"`
	Producer int            `msgpack:"producer" yaml:"producer"`
	Value    *Value         `msgpack:"value,omitempty" yaml:"value,omitempty"`
	Values   []*Value       `msgpack:"values,omitempty" yaml:"values,omitempty"`
	Multiple bool           `msgpack:"multiple,omitempty" yaml:"multiple,omitempty"`
	Targets  []trace.Target `msgpack:"targets,omitempty" yaml:"targets,omitempty"`
	Names    []string       `msgpack:"names,omitempty" yaml:"names,omitempty"`
}

// Recorder converts a live event stream into records. Register its Listener
// on the tracer whose Tracker it shares, so object identities in the records
// match the tracer's.
type Recorder struct {
	tracker trace.Tracker
	index   map[trace.Event]int
	records []*Record
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithTracker sets the identity oracle used to reduce objects to references.
func WithTracker(tracker trace.Tracker) RecorderOption {
	return func(r *Recorder) {
		r.tracker = tracker
	}
}

// NewRecorder creates a recorder.
func NewRecorder(options ...RecorderOption) *Recorder {
	r := &Recorder{
		tracker: trace.NewObjectTracker(),
		index:   map[trace.Event]int{},
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Listener adapts the recorder for registration on a tracer.
func (r *Recorder) Listener() trace.Listener {
	return r.Push
}

// Push appends one event to the recording.
func (r *Recorder) Push(event trace.Event) {
	r.index[event] = len(r.records)
	r.records = append(r.records, r.convert(event))
}

// Records returns the recording so far.
func (r *Recorder) Records() []*Record {
	return r.records
}

func (r *Recorder) convert(event trace.Event) *Record {
	rec := &Record{Producer: -1}
	switch actual := event.(type) {
	case *trace.CallEvent:
		rec.Kind = KindCall
		rec.Module = actual.Function.Module
		rec.QualName = actual.Function.QualName
		rec.Atomic = actual.Function.Atomic
		rec.NumArgs = actual.NumArgs
	case *trace.ArgumentEvent:
		rec.Kind = KindArgument
		rec.Name = actual.Name
		rec.Stars = actual.Stars
		rec.Value = r.value(actual.Value)
		rec.Producer = r.producer(actual.Producer)
	case *trace.ReturnEvent:
		rec.Kind = KindReturn
		rec.Multiple = actual.MultipleValues
		if actual.MultipleValues {
			values, _ := actual.Value.([]any)
			for _, v := range values {
				rec.Values = append(rec.Values, r.value(v))
			}
		} else {
			rec.Value = r.value(actual.Value)
		}
	case *trace.AccessEvent:
		rec.Kind = KindAccess
		rec.Name = actual.Name
		rec.Value = r.value(actual.Value)
	case *trace.AssignEvent:
		rec.Kind = KindAssign
		rec.Targets = actual.Targets
		rec.Value = r.value(actual.Value)
		rec.Producer = r.producer(actual.Producer)
	case *trace.DeleteEvent:
		rec.Kind = KindDelete
		rec.Names = actual.Names
	}
	return rec
}

func (r *Recorder) producer(event trace.Event) int {
	if event == nil {
		return -1
	}
	if i, ok := r.index[event]; ok {
		return i
	}
	return -1
}

func (r *Recorder) value(v any) *Value {
	if v == nil {
		return nil
	}
	if id, ok := r.tracker.ID(v); ok {
		return &Value{Ref: id}
	}
	if id, ok := r.tracker.Track(v); ok {
		return &Value{Ref: id}
	}
	switch v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return &Value{Scalar: v}
	}
	return &Value{}
}

// Write streams records to w as a sequence of msgpack values.
func Write(w io.Writer, records []*Record) error {
	enc := msgpack.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes a record stream until EOF.
func Read(r io.Reader) ([]*Record, error) {
	dec := msgpack.NewDecoder(r)
	var records []*Record
	for {
		rec := &Record{}
		if err := dec.Decode(rec); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return nil, err
		}
		records = append(records, rec)
	}
}

// Replay converts records back into events and feeds them to the listener in
// order. Tracked objects come back as trace.Ref values carrying only their
// identity; producer links are restored to the reconstructed events.
func Replay(records []*Record, listener trace.Listener) error {
	events := make([]trace.Event, 0, len(records))
	for i, rec := range records {
		var producer trace.Event
		if rec.Producer >= 0 {
			if rec.Producer >= i {
				return fmt.Errorf("record %v: producer %v not yet seen", i, rec.Producer)
			}
			producer = events[rec.Producer]
		}
		event, err := rec.event(producer)
		if err != nil {
			return fmt.Errorf("record %v: %w", i, err)
		}
		events = append(events, event)
		listener(event)
	}
	return nil
}

func (rec *Record) event(producer trace.Event) (trace.Event, error) {
	switch rec.Kind {
	case KindCall:
		return &trace.CallEvent{
			Function: &trace.FuncInfo{
				Module:   rec.Module,
				QualName: rec.QualName,
				Atomic:   rec.Atomic,
			},
			NumArgs: rec.NumArgs,
		}, nil
	case KindArgument:
		return &trace.ArgumentEvent{
			Value:    rec.Value.reify(),
			Name:     rec.Name,
			Stars:    rec.Stars,
			Producer: producer,
		}, nil
	case KindReturn:
		if rec.Multiple {
			values := make([]any, 0, len(rec.Values))
			for _, v := range rec.Values {
				values = append(values, v.reify())
			}
			return &trace.ReturnEvent{Value: values, MultipleValues: true}, nil
		}
		return &trace.ReturnEvent{Value: rec.Value.reify()}, nil
	case KindAccess:
		return &trace.AccessEvent{Name: rec.Name, Value: rec.Value.reify()}, nil
	case KindAssign:
		return &trace.AssignEvent{Targets: rec.Targets, Value: rec.Value.reify(), Producer: producer}, nil
	case KindDelete:
		return &trace.DeleteEvent{Names: rec.Names}, nil
	}
	return nil, fmt.Errorf("unknown record kind %q", rec.Kind)
}

func (v *Value) reify() any {
	if v == nil {
		return nil
	}
	if v.Ref != "" {
		return trace.Ref{ID: v.Ref}
	}
	if v.Scalar != nil {
		return v.Scalar
	}
	return Opaque{}
}
