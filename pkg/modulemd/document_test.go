package modulemd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMixedDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(test.Mixed()), 0o644))
	index, err := ReadFile(path, false)
	require.NoError(t, err)

	require.Len(t, index.Documents, 2)
	streams := index.ModuleStreams()
	require.Len(t, streams, 1)
	assert.Equal(t, "good:1:0", streams[0].NSVCA())
	require.Len(t, index.Obsoletes(), 1)
	assert.Empty(t, index.Packagers())

	require.Len(t, index.Failures, 3)
	assert.True(t, errors.Is(index.Failures[0].Err, ce.ErrMissingRequired))
	assert.Equal(t, "No document type specified", index.Failures[0].Error())
	assert.Equal(t, "unknown-document", index.Failures[1].DocType)
	assert.True(t, errors.Is(index.Failures[1].Err, ce.ErrUnknownDocument))
	assert.Equal(t, DocTypeModuleStream, index.Failures[2].DocType)
	assert.Equal(t, uint64(2), index.Failures[2].Version)
	assert.True(t, errors.Is(index.Failures[2].Err, ce.ErrMalformedEvent))

	index.AssociateObsoletes()
	stream, ok := streams[0].(*ModuleStreamV2)
	require.True(t, ok)
	require.NotNil(t, stream.Obsoletes())
	assert.Equal(t, "Replaced.", stream.Obsoletes().Message)
}

func TestReadDuplicateHeaders(t *testing.T) {
	type TestCase struct {
		Name     string
		Given    []events.Event
		Expected string
	}
	scalar := func(v string) events.Event { return events.NewScalar(v, events.StylePlain) }
	data := []events.Event{scalar("data"), events.NewMappingStart(events.StyleAny), {Type: events.MappingEnd}}
	header := func(body ...events.Event) []events.Event {
		evs := []events.Event{{Type: events.DocumentStart}, events.NewMappingStart(events.StyleAny)}
		evs = append(evs, body...)
		return append(evs, events.Event{Type: events.MappingEnd}, events.Event{Type: events.DocumentEnd})
	}
	testCases := []TestCase{
		{
			Name:     "document twice",
			Given:    header(append([]events.Event{scalar("document"), scalar("modulemd"), scalar("document"), scalar("modulemd"), scalar("version"), scalar("2")}, data...)...),
			Expected: "Document type encountered twice.",
		},
		{
			Name:     "version twice",
			Given:    header(append([]events.Event{scalar("document"), scalar("modulemd"), scalar("version"), scalar("2"), scalar("version"), scalar("2")}, data...)...),
			Expected: "Document version encountered twice.",
		},
		{
			Name:     "no version",
			Given:    header(append([]events.Event{scalar("document"), scalar("modulemd")}, data...)...),
			Expected: "No document version specified",
		},
		{
			Name:     "no data",
			Given:    header(scalar("document"), scalar("modulemd"), scalar("version"), scalar("2")),
			Expected: "No data section provided",
		},
	}
	for _, testCase := range testCases {
		t.Log(testCase.Name)
		index, err := ReadDocuments(events.NewReplay(testCase.Given), false)
		require.NoError(t, err)
		assert.Empty(t, index.Documents)
		require.Len(t, index.Failures, 1)
		assert.Equal(t, testCase.Expected, index.Failures[0].Err.(*ce.ModulemdError).Message)
	}
}

func TestReadInvalidYAML(t *testing.T) {
	_, err := ReadString("document: [unclosed", false)
	assert.True(t, errors.Is(err, ce.ErrMalformedEvent))

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"), false)
	assert.Error(t, err)
}

func TestReadEmpty(t *testing.T) {
	index, err := ReadString("", false)
	require.NoError(t, err)
	assert.Empty(t, index.Documents)
	assert.Empty(t, index.Failures)
}

func TestEmitMultipleDocuments(t *testing.T) {
	a := minimalV2()
	b := minimalV2()
	b.StreamName = "baz"

	out, err := EmitString(a, b)
	require.NoError(t, err)

	index, err := ReadString(out, true)
	require.NoError(t, err)
	require.Len(t, index.Documents, 2)
	assert.True(t, Equal(a, index.Documents[0]))
	assert.True(t, Equal(b, index.Documents[1]))
	assert.False(t, Equal(a, b))
	assert.False(t, Equal(a, NewModuleStreamV3("foo", "bar")))
}

func TestEmitInvalidDocument(t *testing.T) {
	invalid := minimalV2()
	invalid.Summary = ""
	sink := &discardSink{}
	err := EmitDocuments(sink, minimalV2(), invalid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ce.ErrMissingRequired))
	assert.Contains(t, err.Error(), "modulemd version 2 failed to validate")
}
