// Package events models YAML documents as a flat stream of typed events.
//
// Parsers pull events from a Source and emitters push events into a Sink.
// Neither side scans raw text; gopkg.in/yaml.v3 does the tokenizing and
// rendering underneath.
package events

import "fmt"

type EventType int

const (
	NoEvent EventType = iota
	DocumentStart
	DocumentEnd
	MappingStart
	MappingEnd
	SequenceStart
	SequenceEnd
	Scalar
	StreamEnd
)

var eventNames = map[EventType]string{
	NoEvent:       "NO_EVENT",
	DocumentStart: "DOCUMENT_START",
	DocumentEnd:   "DOCUMENT_END",
	MappingStart:  "MAPPING_START",
	MappingEnd:    "MAPPING_END",
	SequenceStart: "SEQUENCE_START",
	SequenceEnd:   "SEQUENCE_END",
	Scalar:        "SCALAR",
	StreamEnd:     "STREAM_END",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EVENT(%d)", int(t))
}

// Style is the presentation of a scalar or collection. StyleAny lets the
// renderer choose.
type Style int

const (
	StyleAny Style = iota
	StylePlain
	StyleDoubleQuoted
	StyleSingleQuoted
	StyleLiteral
	StyleFolded
	StyleFlow
)

type Event struct {
	Type   EventType
	Value  string
	Style  Style
	Line   int
	Column int
}

func (e Event) String() string {
	if e.Type == Scalar {
		return fmt.Sprintf("%s(%q)", e.Type, e.Value)
	}
	return e.Type.String()
}

// Starts returns true for events opening a collection.
func (e Event) Starts() bool {
	return e.Type == MappingStart || e.Type == SequenceStart
}

// Ends returns true for events closing a collection.
func (e Event) Ends() bool {
	return e.Type == MappingEnd || e.Type == SequenceEnd
}

// Source is a pull-style event stream. After the last document it returns
// StreamEnd on every call.
type Source interface {
	Next() (Event, error)
}

// Sink is a push-style event consumer.
type Sink interface {
	Emit(event Event) error
}

func NewScalar(value string, style Style) Event {
	return Event{Type: Scalar, Value: value, Style: style}
}

func NewMappingStart(style Style) Event {
	return Event{Type: MappingStart, Style: style}
}

func NewSequenceStart(style Style) Event {
	return Event{Type: SequenceStart, Style: style}
}
