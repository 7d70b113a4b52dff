package events

import (
	"bytes"
	"io"
	"strings"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	documentStartMarker = "---\n"
	documentEndMarker   = "...\n"
)

// YAMLSink assembles events into yaml.v3 nodes and writes each document to
// the underlying writer when it ends. Every document is framed by explicit
// start and end markers.
type YAMLSink struct {
	w     io.Writer
	stack []*yaml.Node
	doc   *yaml.Node
}

func NewYAMLSink(w io.Writer) *YAMLSink {
	return &YAMLSink{w: w}
}

func (s *YAMLSink) Emit(ev Event) error {
	switch ev.Type {
	case DocumentStart:
		if s.doc != nil {
			return ce.NewEmit("Document started inside another document")
		}
		s.doc = &yaml.Node{Kind: yaml.DocumentNode}
		s.stack = []*yaml.Node{s.doc}
	case DocumentEnd:
		if s.doc == nil || len(s.stack) != 1 {
			return ce.NewEmit("Document ended with open collections")
		}
		err := s.writeDocument()
		s.doc = nil
		s.stack = nil
		return err
	case MappingStart:
		return s.open(&yaml.Node{Kind: yaml.MappingNode, Style: nodeCollectionStyle(ev.Style)})
	case SequenceStart:
		return s.open(&yaml.Node{Kind: yaml.SequenceNode, Style: nodeCollectionStyle(ev.Style)})
	case MappingEnd:
		return s.close(yaml.MappingNode)
	case SequenceEnd:
		return s.close(yaml.SequenceNode)
	case Scalar:
		return s.append(&yaml.Node{Kind: yaml.ScalarNode, Value: ev.Value, Style: nodeScalarStyle(ev.Value, ev.Style)})
	case StreamEnd:
		if s.doc != nil {
			return ce.NewEmit("Stream ended inside a document")
		}
	default:
		return ce.NewEmit("Cannot emit event %s", ev.Type)
	}
	return nil
}

func (s *YAMLSink) append(n *yaml.Node) error {
	if len(s.stack) == 0 {
		return ce.NewEmit("Node emitted outside of a document")
	}
	top := s.stack[len(s.stack)-1]
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		return ce.NewEmit("Document already has a root node")
	}
	top.Content = append(top.Content, n)
	return nil
}

func (s *YAMLSink) open(n *yaml.Node) error {
	if err := s.append(n); err != nil {
		return err
	}
	s.stack = append(s.stack, n)
	return nil
}

func (s *YAMLSink) close(kind yaml.Kind) error {
	if len(s.stack) < 2 || s.stack[len(s.stack)-1].Kind != kind {
		return ce.NewEmit("Unbalanced collection end")
	}
	top := s.stack[len(s.stack)-1]
	if kind == yaml.MappingNode && len(top.Content)%2 != 0 {
		return ce.NewEmit("Mapping ended with a key and no value")
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

func (s *YAMLSink) writeDocument() error {
	var buf bytes.Buffer
	buf.WriteString(documentStartMarker)
	if len(s.doc.Content) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s.doc); err != nil {
			mmdErr := ce.NewEmit("Failed to render YAML document")
			mmdErr.Wrap(err)
			return mmdErr
		}
		if err := enc.Close(); err != nil {
			mmdErr := ce.NewEmit("Failed to render YAML document")
			mmdErr.Wrap(err)
			return mmdErr
		}
	}
	buf.WriteString(documentEndMarker)
	_, err := s.w.Write(buf.Bytes())
	return err
}

func nodeCollectionStyle(style Style) yaml.Style {
	if style == StyleFlow {
		return yaml.FlowStyle
	}
	return 0
}

// nodeScalarStyle maps an event style to a node style. Folded text with a
// more-indented line does not read back unchanged, so it is written as a
// literal block instead.
func nodeScalarStyle(value string, style Style) yaml.Style {
	if style == StyleFolded && hasIndentedLine(value) {
		style = StyleLiteral
	}
	switch style {
	case StyleDoubleQuoted:
		return yaml.DoubleQuotedStyle
	case StyleSingleQuoted:
		return yaml.SingleQuotedStyle
	case StyleLiteral:
		return yaml.LiteralStyle
	case StyleFolded:
		return yaml.FoldedStyle
	}
	return 0
}

func hasIndentedLine(value string) bool {
	for _, line := range strings.Split(value, "\n") {
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			return true
		}
	}
	return false
}
