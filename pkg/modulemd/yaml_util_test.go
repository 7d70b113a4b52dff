package modulemd

import (
	"errors"
	"strings"
	"testing"
	"time"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discardSink accepts every event.
type discardSink struct {
	count int
}

func (d *discardSink) Emit(events.Event) error {
	d.count++
	return nil
}

// parserFor positions a parser on the value of a one key YAML mapping.
func parserFor(t *testing.T, yaml string, strict bool) *parser {
	src := events.NewYAMLSource(strings.NewReader(yaml))
	for _, expected := range []events.EventType{events.DocumentStart, events.MappingStart, events.Scalar} {
		ev, err := src.Next()
		require.NoError(t, err)
		require.Equal(t, expected, ev.Type)
	}
	return newParser(src, strict)
}

func TestParseScalars(t *testing.T) {
	value, err := parserFor(t, "k: hello", false).parseString()
	require.NoError(t, err)
	assert.Equal(t, "hello", value)

	_, err = parserFor(t, "k: [a]", false).parseString()
	assert.True(t, errors.Is(err, ce.ErrMalformedEvent))

	flag, err := parserFor(t, "k: true", false).parseBool()
	require.NoError(t, err)
	assert.True(t, flag)

	_, err = parserFor(t, "k: yes", false).parseBool()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Boolean value was neither \"true\" nor \"false\": yes")

	number, err := parserFor(t, "k: 42", false).parseUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), number)

	_, err = parserFor(t, "k: -1", false).parseUint64()
	assert.True(t, errors.Is(err, ce.ErrMalformedEvent))

	signed, err := parserFor(t, "k: -1", false).parseInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), signed)

	date, err := parserFor(t, "k: 2038-01-19", false).parseDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2038, 1, 19, 0, 0, 0, 0, time.UTC), date)

	_, err = parserFor(t, "k: 19.01.2038", false).parseDate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Date not in the form YYYY-MM-DD")
}

func TestParseCollections(t *testing.T) {
	set, err := parserFor(t, "k: [b, a, b]", false).parseStringSet("k")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, set.Values())

	_, err = parserFor(t, "k: {a: b}", false).parseStringSet("k")
	assert.True(t, errors.Is(err, ce.ErrMalformedEvent))

	_, err = parserFor(t, "k: [a, [b]]", false).parseStringSet("k")
	assert.True(t, errors.Is(err, ce.ErrMalformedEvent))

	set, err = parserFor(t, "k: {rpms: [x]}", false).parseStringSetFromMap("rpms", "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, set.Values())

	_, err = parserFor(t, "k: {rpms: [x], other: [y]}", true).parseStringSetFromMap("rpms", "k")
	assert.True(t, errors.Is(err, ce.ErrUnknownKey))

	m, err := parserFor(t, "k: {a: '1', b: '2'}", false).parseStringMap("k")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, m)

	nested, err := parserFor(t, "k: {platform: [f33, f34], other: []}", false).parseNestedSet("k")
	require.NoError(t, err)
	assert.Equal(t, []string{"f33", "f34"}, nested["platform"].Values())
	assert.True(t, nested["other"].IsEmpty())
}

func TestEmitterSticksToFirstError(t *testing.T) {
	sink := &discardSink{}
	e := newEmitter(sink)
	e.scalar("a")
	e.fail(ce.NewEmit("first"))
	e.fail(ce.NewEmit("second"))
	e.scalar("b")
	assert.Equal(t, 1, sink.count)
	assert.Equal(t, "first", e.err.Error())
}
