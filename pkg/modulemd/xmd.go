package modulemd

import (
	"fmt"
	"reflect"
	"strconv"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
)

// Xmd is free-form extensible metadata. Values are strings, booleans,
// nested Xmd mappings and []any sequences. It is carried through parse and
// emit without interpretation.
type Xmd map[string]any

const (
	xmdTrue  = "TRUE"
	xmdFalse = "FALSE"
)

func parseXmd(p *parser) (Xmd, error) {
	ev, err := p.next()
	if err != nil {
		return nil, err
	}
	if ev.Type != events.MappingStart {
		return nil, malformed(ev, "Missing mapping in xmd")
	}
	value, err := parseXmdValue(p, ev)
	if err != nil {
		return nil, err
	}
	return value.(Xmd), nil
}

func parseXmdValue(p *parser, first events.Event) (any, error) {
	switch first.Type {
	case events.Scalar:
		switch first.Value {
		case xmdTrue:
			return true, nil
		case xmdFalse:
			return false, nil
		}
		return first.Value, nil
	case events.MappingStart:
		out := Xmd{}
		for {
			key, err := p.next()
			if err != nil {
				return nil, err
			}
			if key.Type == events.MappingEnd {
				return out, nil
			}
			if key.Type != events.Scalar {
				return nil, malformed(key, "Unexpected YAML event in xmd mapping: %s", key.Type)
			}
			valueEvent, err := p.next()
			if err != nil {
				return nil, err
			}
			value, err := parseXmdValue(p, valueEvent)
			if err != nil {
				return nil, err
			}
			out[key.Value] = value
		}
	case events.SequenceStart:
		out := []any{}
		for {
			ev, err := p.next()
			if err != nil {
				return nil, err
			}
			if ev.Type == events.SequenceEnd {
				return out, nil
			}
			value, err := parseXmdValue(p, ev)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
	}
	return nil, malformed(first, "Unexpected YAML event in xmd: %s", first.Type)
}

// Copy returns a deep copy. Scalars are immutable so only containers are duplicated.
func (x Xmd) Copy() Xmd {
	if x == nil {
		return nil
	}
	return copyXmdValue(x).(Xmd)
}

func copyXmdValue(v any) any {
	switch val := v.(type) {
	case Xmd:
		out := make(Xmd, len(val))
		for k, item := range val {
			out[k] = copyXmdValue(item)
		}
		return out
	case map[string]any:
		return copyXmdValue(Xmd(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyXmdValue(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	}
	return v
}

func (x Xmd) Equals(other Xmd) bool {
	if x == nil || other == nil {
		return x == nil && other == nil
	}
	return reflect.DeepEqual(copyXmdValue(x), copyXmdValue(other))
}

func (x Xmd) emit(e *emitter) {
	e.scalar("xmd")
	emitXmdValue(e, x)
}

func emitXmdValue(e *emitter, v any) {
	switch val := v.(type) {
	case Xmd:
		e.startMapping()
		for _, k := range utils.SortedKeys(val) {
			e.scalar(k)
			emitXmdValue(e, val[k])
		}
		e.endMapping()
	case map[string]any:
		emitXmdValue(e, Xmd(val))
	case []any:
		e.startSequence(events.StyleAny)
		for _, item := range val {
			emitXmdValue(e, item)
		}
		e.endSequence()
	case []string:
		e.sequence(val, events.StyleAny)
	case string:
		e.scalar(val)
	case bool:
		if val {
			e.scalar(xmdTrue)
		} else {
			e.scalar(xmdFalse)
		}
	case int, int32, int64, uint, uint32, uint64:
		e.scalar(fmt.Sprintf("%d", val))
	case float32:
		e.scalar(strconv.FormatFloat(float64(val), 'g', -1, 32))
	case float64:
		e.scalar(strconv.FormatFloat(val, 'g', -1, 64))
	case nil:
		e.scalar("")
	default:
		e.fail(ce.NewEmit("Unsupported xmd value of type %T", v))
	}
}
