package modulemd

import (
	"strconv"
	"time"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

// parser pulls events for the recursive descent parsers. Every parse method
// consumes exactly one node.
type parser struct {
	src    events.Source
	strict bool
}

func newParser(src events.Source, strict bool) *parser {
	return &parser{src: src, strict: strict}
}

func (p *parser) next() (events.Event, error) {
	return p.src.Next()
}

func malformed(ev events.Event, format string, args ...any) error {
	return ce.NewMalformedEvent(ev.Line, ev.Column, format, args...)
}

// mapping consumes one mapping, calling handle with every key. The handler
// must consume the value.
func (p *parser) mapping(what string, handle func(key events.Event) error) error {
	ev, err := p.next()
	if err != nil {
		return err
	}
	if ev.Type != events.MappingStart {
		return malformed(ev, "Missing mapping in %s", what)
	}
	return p.mappingBody(what, handle)
}

// mappingBody is mapping for a caller that already consumed MappingStart.
func (p *parser) mappingBody(what string, handle func(key events.Event) error) error {
	for {
		ev, err := p.next()
		if err != nil {
			return err
		}
		switch ev.Type {
		case events.MappingEnd:
			return nil
		case events.Scalar:
			if err = handle(ev); err != nil {
				return err
			}
		default:
			return malformed(ev, "Unexpected YAML event in %s: %s", what, ev.Type)
		}
	}
}

// sequence consumes one sequence, calling handle with the first event of
// every item.
func (p *parser) sequence(what string, handle func(item events.Event) error) error {
	ev, err := p.next()
	if err != nil {
		return err
	}
	if ev.Type != events.SequenceStart {
		return malformed(ev, "Missing sequence in %s", what)
	}
	for {
		ev, err = p.next()
		if err != nil {
			return err
		}
		switch ev.Type {
		case events.SequenceEnd:
			return nil
		case events.Scalar, events.MappingStart, events.SequenceStart:
			if err = handle(ev); err != nil {
				return err
			}
		default:
			return malformed(ev, "Unexpected YAML event in %s: %s", what, ev.Type)
		}
	}
}

// skipUnknown fails in strict mode and otherwise discards the value of key.
func (p *parser) skipUnknown(key events.Event, what string) error {
	if p.strict {
		return ce.NewUnknownKey(key.Line, key.Column, key.Value)
	}
	log.Debug().
		Str("key", key.Value).
		Str("section", what).
		Int("line", key.Line).
		Int("column", key.Column).
		Msg("Skipping unknown key")
	return events.Skip(p.src)
}

func (p *parser) parseString() (string, error) {
	ev, err := p.next()
	if err != nil {
		return "", err
	}
	if ev.Type != events.Scalar {
		return "", malformed(ev, "String was not a scalar")
	}
	return ev.Value, nil
}

func (p *parser) parseBool() (bool, error) {
	ev, err := p.next()
	if err != nil {
		return false, err
	}
	if ev.Type != events.Scalar {
		return false, malformed(ev, "Expected a scalar boolean")
	}
	switch ev.Value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, malformed(ev, "Boolean value was neither \"true\" nor \"false\": %s", ev.Value)
}

func (p *parser) parseUint64() (uint64, error) {
	ev, err := p.next()
	if err != nil {
		return 0, err
	}
	if ev.Type != events.Scalar {
		return 0, malformed(ev, "Expected a scalar unsigned integer")
	}
	value, err := strconv.ParseUint(ev.Value, 10, 64)
	if err != nil {
		return 0, malformed(ev, "Invalid unsigned integer: %s", ev.Value)
	}
	return value, nil
}

func (p *parser) parseInt64() (int64, error) {
	ev, err := p.next()
	if err != nil {
		return 0, err
	}
	if ev.Type != events.Scalar {
		return 0, malformed(ev, "Expected a scalar integer")
	}
	value, err := strconv.ParseInt(ev.Value, 10, 64)
	if err != nil {
		return 0, malformed(ev, "Invalid integer: %s", ev.Value)
	}
	return value, nil
}

func (p *parser) parseDate() (time.Time, error) {
	ev, err := p.next()
	if err != nil {
		return time.Time{}, err
	}
	if ev.Type != events.Scalar {
		return time.Time{}, malformed(ev, "Date was not a scalar")
	}
	date, err := time.Parse(dateLayout, ev.Value)
	if err != nil {
		return time.Time{}, malformed(ev, "Date not in the form YYYY-MM-DD")
	}
	return date, nil
}

// parseStringSet reads a sequence of scalars. Duplicates collapse.
func (p *parser) parseStringSet(what string) (StringSet, error) {
	set := StringSet{}
	err := p.sequence(what, func(item events.Event) error {
		if item.Type != events.Scalar {
			return malformed(item, "Unexpected YAML event in %s list: %s", what, item.Type)
		}
		set.Add(item.Value)
		return nil
	})
	return set, err
}

// parseStringSetFromMap reads a mapping whose only expected key wraps a
// sequence, such as `api: {rpms: [...]}`.
func (p *parser) parseStringSetFromMap(key string, what string) (StringSet, error) {
	set := StringSet{}
	found := false
	err := p.mapping(what, func(k events.Event) error {
		if k.Value != key {
			return p.skipUnknown(k, what)
		}
		if found {
			return malformed(k, "Key %s encountered twice in %s", key, what)
		}
		found = true
		var err error
		set, err = p.parseStringSet(what)
		return err
	})
	return set, err
}

// parseStringMap reads a mapping of scalars to scalars.
func (p *parser) parseStringMap(what string) (map[string]string, error) {
	result := map[string]string{}
	err := p.mapping(what, func(k events.Event) error {
		if _, ok := result[k.Value]; ok {
			return malformed(k, "Key %s encountered twice in %s", k.Value, what)
		}
		value, err := p.parseString()
		if err != nil {
			return err
		}
		result[k.Value] = value
		return nil
	})
	return result, err
}

// parseNestedSet reads a mapping of scalars to string sequences.
func (p *parser) parseNestedSet(what string) (map[string]StringSet, error) {
	result := map[string]StringSet{}
	err := p.mapping(what, func(k events.Event) error {
		if _, ok := result[k.Value]; ok {
			return malformed(k, "Key %s encountered twice in %s", k.Value, what)
		}
		set, err := p.parseStringSet(what)
		if err != nil {
			return err
		}
		result[k.Value] = set
		return nil
	})
	return result, err
}

// emitter pushes events into a sink. The first failure sticks and every
// later call is a no-op, so emit functions check err once at the end.
type emitter struct {
	sink events.Sink
	err  error
}

func newEmitter(sink events.Sink) *emitter {
	return &emitter{sink: sink}
}

func (e *emitter) emit(ev events.Event) {
	if e.err != nil {
		return
	}
	e.err = e.sink.Emit(ev)
}

func (e *emitter) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *emitter) scalar(value string) {
	e.emit(events.NewScalar(value, events.StylePlain))
}

func (e *emitter) styledScalar(value string, style events.Style) {
	e.emit(events.NewScalar(value, style))
}

func (e *emitter) startMapping() {
	e.emit(events.NewMappingStart(events.StyleAny))
}

func (e *emitter) endMapping() {
	e.emit(events.Event{Type: events.MappingEnd})
}

func (e *emitter) startSequence(style events.Style) {
	e.emit(events.NewSequenceStart(style))
}

func (e *emitter) endSequence() {
	e.emit(events.Event{Type: events.SequenceEnd})
}

func (e *emitter) keyValue(key string, value string) {
	e.scalar(key)
	e.scalar(value)
}

func (e *emitter) styledKeyValue(key string, value string, style events.Style) {
	e.scalar(key)
	e.styledScalar(value, style)
}

func (e *emitter) keyValueIfSet(key string, value string) {
	if value != "" {
		e.keyValue(key, value)
	}
}

func (e *emitter) sequence(values []string, style events.Style) {
	e.startSequence(style)
	for _, v := range values {
		e.scalar(v)
	}
	e.endSequence()
}

// stringSet emits key followed by the sorted members of set.
func (e *emitter) stringSet(key string, set StringSet, style events.Style) {
	e.scalar(key)
	e.sequence(set.Values(), style)
}

func (e *emitter) stringSetIfNonEmpty(key string, set StringSet, style events.Style) {
	if !set.IsEmpty() {
		e.stringSet(key, set, style)
	}
}

// stringSetFromMap emits `outer: {inner: [...]}` when set is not empty.
func (e *emitter) stringSetFromMap(outer string, inner string, set StringSet) {
	if set.IsEmpty() {
		return
	}
	e.scalar(outer)
	e.startMapping()
	e.stringSet(inner, set, events.StyleAny)
	e.endMapping()
}

func (e *emitter) stringMapIfNonEmpty(key string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	e.scalar(key)
	e.startMapping()
	for _, k := range utils.SortedKeys(m) {
		e.keyValue(k, m[k])
	}
	e.endMapping()
}

func (e *emitter) nestedSet(key string, m map[string]StringSet) {
	e.scalar(key)
	e.startMapping()
	for _, k := range utils.SortedKeys(m) {
		e.stringSet(k, m[k], events.StyleFlow)
	}
	e.endMapping()
}

func (e *emitter) startDocument(doctype string, mdversion uint64) {
	e.emit(events.Event{Type: events.DocumentStart})
	e.startMapping()
	e.keyValue("document", doctype)
	e.keyValue("version", strconv.FormatUint(mdversion, 10))
	e.scalar("data")
	e.startMapping()
}

func (e *emitter) endDocument() {
	e.endMapping()
	e.endMapping()
	e.emit(events.Event{Type: events.DocumentEnd})
}
