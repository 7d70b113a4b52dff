package modulemd

import (
	"testing"

	"github.com/content-services/modulemd-backend/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTranslationFixture(t *testing.T) {
	tr, ok := readOne(t, test.Translations(), true).(*Translation)
	require.True(t, ok)
	assert.Equal(t, "foo", tr.ModuleName)
	assert.Equal(t, "latest", tr.ModuleStream)
	assert.Equal(t, uint64(201805231425), tr.Modified)
	require.Len(t, tr.Entries, 2)

	gb := tr.Entries["en_GB"]
	require.NotNil(t, gb)
	assert.Equal(t, "An example module, colour edition", gb.Summary)
	assert.Equal(t, "A module for the demonstration of the metadata format, with British spelling.", gb.Description)
	assert.Equal(t, map[string]string{"minimal": "Minimal profile installing only the bar package, in colour."}, gb.ProfileDescriptions)

	emitted, err := EmitString(tr)
	require.NoError(t, err)
	again, ok := readOne(t, emitted, true).(*Translation)
	require.True(t, ok)
	assert.True(t, tr.Equals(again), emitted)
}

func TestTranslationValidate(t *testing.T) {
	type TestCase struct {
		Name     string
		Given    func(*Translation)
		Expected string
	}
	testCases := []TestCase{
		{Name: "valid", Given: func(tr *Translation) {}, Expected: ""},
		{Name: "module", Given: func(tr *Translation) { tr.ModuleName = "" }, Expected: "Translation module name is unset."},
		{Name: "stream", Given: func(tr *Translation) { tr.ModuleStream = "" }, Expected: "Translation module stream is unset."},
		{Name: "modified", Given: func(tr *Translation) { tr.Modified = 0 }, Expected: "Translation module modified is empty."},
	}
	for _, testCase := range testCases {
		tr := NewTranslation("foo", "latest", 1)
		testCase.Given(tr)
		err := tr.Validate()
		if testCase.Expected == "" {
			assert.NoError(t, err, testCase.Name)
			continue
		}
		require.Error(t, err, testCase.Name)
		assert.Equal(t, testCase.Expected, err.Error(), testCase.Name)
	}
}

func TestParseTranslationDuplicates(t *testing.T) {
	type TestCase struct {
		Name     string
		Given    string
		Expected string
	}
	testCases := []TestCase{
		{Name: "module", Given: `{module: a, module: b, stream: s, modified: 1}`, Expected: "Module name encountered twice"},
		{Name: "stream", Given: `{module: a, stream: s, stream: t, modified: 1}`, Expected: "Module stream encountered twice"},
	}
	for _, testCase := range testCases {
		yaml := "document: modulemd-translations\nversion: 1\ndata: " + testCase.Given + "\n"
		index, err := ReadString(yaml, true)
		require.NoError(t, err, testCase.Name)
		require.Len(t, index.Failures, 1, testCase.Name)
		assert.Contains(t, index.Failures[0].Error(), testCase.Expected, testCase.Name)
	}
}

func TestTranslationCopyIsIndependent(t *testing.T) {
	tr := NewTranslation("foo", "latest", 1)
	tr.SetEntry("de_DE", &TranslationEntry{Summary: "Zusammenfassung", ProfileDescriptions: map[string]string{"minimal": "Minimal"}})
	copied := tr.Copy()
	require.True(t, tr.Equals(copied))

	copied.Entries["de_DE"].ProfileDescriptions["minimal"] = "Klein"
	assert.False(t, tr.Equals(copied))
	assert.Equal(t, "Minimal", tr.Entries["de_DE"].ProfileDescriptions["minimal"])
}

func TestApplyTranslations(t *testing.T) {
	newer := `---
document: modulemd-translations
version: 1
data:
  module: foo
  stream: "latest"
  modified: 201901010000
  translations:
    en_GB:
      summary: A newer example module
...
`
	other := `---
document: modulemd-translations
version: 1
data:
  module: foo
  stream: "devel"
  modified: 201901010000
  translations:
    en_GB:
      summary: Wrong stream
...
`
	// The newer translation comes first to show the order of the stream does
	// not matter.
	index, err := ReadString(newer+other+test.ModuleStreamV2()+test.Translations(), true)
	require.NoError(t, err)
	require.Empty(t, index.Failures)
	require.Len(t, index.Translations(), 3)

	index.ApplyTranslations()
	streams := index.ModuleStreams()
	require.Len(t, streams, 1)
	stream, ok := streams[0].(*ModuleStreamV2)
	require.True(t, ok)

	assert.Equal(t, "A newer example module", stream.LocalizedSummary("en_GB"))
	assert.Equal(t, "A module for the demonstration of the metadata format, with British spelling.", stream.LocalizedDescription("en_GB"))
	assert.Equal(t, "Un módulo de ejemplo", stream.LocalizedSummary("es_ES.UTF-8"))
	assert.Equal(t, "An example module", stream.LocalizedSummary("C"))
	assert.Equal(t, "An example module", stream.LocalizedSummary("fr_FR"))

	assert.Equal(t, "Minimal profile installing only the bar package, in colour.", stream.Profiles["minimal"].LocalizedDescription("en_GB"))
	assert.Equal(t, "Perfil para contenedores.", stream.Profiles["container"].LocalizedDescription("es_ES.UTF-8"))
	assert.NotContains(t, stream.Profiles, "missing")
}
