package events

import (
	"errors"
	"io"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"gopkg.in/yaml.v3"
)

// YAMLSource decodes YAML documents one at a time and replays each decoded
// node tree as events. Aliases are expanded in place.
type YAMLSource struct {
	decoder *yaml.Decoder
	pending []Event
	done    bool
}

func NewYAMLSource(r io.Reader) *YAMLSource {
	return &YAMLSource{decoder: yaml.NewDecoder(r)}
}

func (s *YAMLSource) Next() (Event, error) {
	for len(s.pending) == 0 {
		if s.done {
			return Event{Type: StreamEnd}, nil
		}
		var doc yaml.Node
		err := s.decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			s.done = true
			continue
		}
		if err != nil {
			s.done = true
			mmdErr := ce.NewMalformedEvent(0, 0, "Failed to parse YAML stream")
			mmdErr.Wrap(err)
			return Event{}, mmdErr
		}
		f := flattener{out: s.pending}
		f.flatten(&doc, 0)
		if f.err != nil {
			s.done = true
			s.pending = nil
			return Event{}, f.err
		}
		s.pending = f.out
	}
	ev := s.pending[0]
	s.pending = s.pending[1:]
	return ev, nil
}

// maxAliasDepth bounds alias expansion.
const maxAliasDepth = 32

// flattener turns a node tree into events. Events produced through aliases
// are counted so that nested aliases cannot blow up a small document.
type flattener struct {
	out     []Event
	aliased int
	err     error
}

// allowedAliasRatio is the share of events that may come from alias
// expansion once a document has produced total events. Small documents may
// use aliases freely, large ones must be mostly literal.
func allowedAliasRatio(total int) float64 {
	switch {
	case total <= 400000:
		return 0.99
	case total >= 4000000:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(total-400000)/3600000)
	}
}

func (f *flattener) add(ev Event, aliasDepth int) {
	f.out = append(f.out, ev)
	if aliasDepth == 0 {
		return
	}
	f.aliased++
	total := len(f.out)
	if total > 400000 && float64(f.aliased)/float64(total) > allowedAliasRatio(total) {
		f.err = ce.NewMalformedEvent(ev.Line, ev.Column, "Document contains excessive aliasing")
	}
}

func (f *flattener) flatten(n *yaml.Node, aliasDepth int) {
	if f.err != nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode:
		f.add(Event{Type: DocumentStart, Line: n.Line, Column: n.Column}, aliasDepth)
		f.children(n, aliasDepth)
		f.add(Event{Type: DocumentEnd, Line: n.Line, Column: n.Column}, aliasDepth)
	case yaml.MappingNode:
		f.add(Event{Type: MappingStart, Style: collectionStyle(n), Line: n.Line, Column: n.Column}, aliasDepth)
		f.children(n, aliasDepth)
		f.add(Event{Type: MappingEnd, Line: n.Line, Column: n.Column}, aliasDepth)
	case yaml.SequenceNode:
		f.add(Event{Type: SequenceStart, Style: collectionStyle(n), Line: n.Line, Column: n.Column}, aliasDepth)
		f.children(n, aliasDepth)
		f.add(Event{Type: SequenceEnd, Line: n.Line, Column: n.Column}, aliasDepth)
	case yaml.ScalarNode:
		f.add(Event{Type: Scalar, Value: n.Value, Style: scalarStyle(n), Line: n.Line, Column: n.Column}, aliasDepth)
	case yaml.AliasNode:
		if n.Alias != nil && aliasDepth < maxAliasDepth {
			f.flatten(n.Alias, aliasDepth+1)
		} else {
			f.add(Event{Type: Scalar, Line: n.Line, Column: n.Column}, aliasDepth)
		}
	}
}

func (f *flattener) children(n *yaml.Node, aliasDepth int) {
	for _, child := range n.Content {
		if f.err != nil {
			return
		}
		f.flatten(child, aliasDepth)
	}
}

func collectionStyle(n *yaml.Node) Style {
	if n.Style&yaml.FlowStyle != 0 {
		return StyleFlow
	}
	return StyleAny
}

func scalarStyle(n *yaml.Node) Style {
	switch {
	case n.Style&yaml.DoubleQuotedStyle != 0:
		return StyleDoubleQuoted
	case n.Style&yaml.SingleQuotedStyle != 0:
		return StyleSingleQuoted
	case n.Style&yaml.LiteralStyle != 0:
		return StyleLiteral
	case n.Style&yaml.FoldedStyle != 0:
		return StyleFolded
	}
	return StylePlain
}

// Replay serves a recorded slice of events.
type Replay struct {
	events []Event
	pos    int
}

func NewReplay(events []Event) *Replay {
	return &Replay{events: events}
}

func (r *Replay) Next() (Event, error) {
	if r.pos >= len(r.events) {
		return Event{Type: StreamEnd}, nil
	}
	ev := r.events[r.pos]
	r.pos++
	return ev, nil
}

// Record consumes exactly one node from src, a scalar or a whole balanced
// collection, and returns its events.
func Record(src Source) ([]Event, error) {
	ev, err := src.Next()
	if err != nil {
		return nil, err
	}
	return RecordFrom(src, ev)
}

// RecordFrom is Record for a node whose first event was already read.
func RecordFrom(src Source, first Event) ([]Event, error) {
	switch {
	case first.Type == Scalar:
		return []Event{first}, nil
	case first.Starts():
	default:
		return nil, ce.NewMalformedEvent(first.Line, first.Column, "Unexpected YAML event %s", first.Type)
	}

	recorded := []Event{first}
	depth := 1
	for depth > 0 {
		ev, err := src.Next()
		if err != nil {
			return nil, err
		}
		switch {
		case ev.Starts():
			depth++
		case ev.Ends():
			depth--
		case ev.Type == Scalar:
		default:
			return nil, ce.NewMalformedEvent(ev.Line, ev.Column, "Unexpected YAML event %s in node", ev.Type)
		}
		recorded = append(recorded, ev)
	}
	return recorded, nil
}

// Skip consumes and discards one node from src.
func Skip(src Source) error {
	_, err := Record(src)
	return err
}
