package modulemd

import (
	"errors"
	"testing"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultsFixture(t *testing.T) {
	d, ok := readOne(t, test.Defaults(), true).(*Defaults)
	require.True(t, ok)
	assert.Equal(t, "foo", d.ModuleName)
	assert.Equal(t, uint64(201812071200), d.Modified)
	assert.Equal(t, "latest", d.DefaultStream)

	assert.Equal(t, "latest", d.DefaultStreamFor(""))
	assert.Equal(t, "devel", d.DefaultStreamFor("desktop"))
	assert.Equal(t, "latest", d.DefaultStreamFor("server"))

	profiles, ok := d.DefaultProfilesFor("devel", "")
	assert.True(t, ok)
	assert.Equal(t, []string{"container", "minimal"}, profiles)

	profiles, ok = d.DefaultProfilesFor("devel", "desktop")
	assert.True(t, ok)
	assert.Equal(t, []string{"container"}, profiles)

	profiles, ok = d.DefaultProfilesFor("latest", "server")
	assert.True(t, ok)
	assert.Empty(t, profiles)

	profiles, ok = d.DefaultProfilesFor("empty", "")
	assert.True(t, ok)
	assert.Empty(t, profiles)

	_, ok = d.DefaultProfilesFor("unknown", "desktop")
	assert.False(t, ok)

	out, err := EmitString(d)
	require.NoError(t, err)
	assert.Equal(t, `---
document: modulemd-defaults
version: 1
data:
  module: foo
  modified: 201812071200
  stream: "latest"
  profiles:
    devel: [container, minimal]
    empty: []
    latest: [minimal]
  intents:
    desktop:
      stream: "devel"
      profiles:
        devel: [container]
    server:
      profiles:
        latest: []
...
`, out)
}

func TestDefaultsBuilders(t *testing.T) {
	d := NewDefaults("foo")
	d.SetDefaultStream("latest", "")
	d.AddDefaultProfile("latest", "minimal", "")
	d.AddDefaultProfile("latest", "container", "")
	d.SetDefaultStream("devel", "workstation")
	d.AddDefaultProfile("devel", "minimal", "workstation")
	d.SetEmptyDefaultProfiles("old", "")
	require.NoError(t, d.Validate())

	profiles, _ := d.DefaultProfilesFor("latest", "workstation")
	assert.Equal(t, []string{"container", "minimal"}, profiles)
	assert.Equal(t, "devel", d.DefaultStreamFor("workstation"))

	copied := d.Copy()
	assert.True(t, d.Equals(copied))
	copied.AddDefaultProfile("devel", "extra", "workstation")
	assert.False(t, d.Equals(copied))
	profiles, _ = d.DefaultProfilesFor("devel", "workstation")
	assert.Equal(t, []string{"minimal"}, profiles)

	emitted, err := EmitString(d)
	require.NoError(t, err)
	again, ok := readOne(t, emitted, true).(*Defaults)
	require.True(t, ok)
	assert.True(t, d.Equals(again), emitted)
}

func TestParseDefaultsErrors(t *testing.T) {
	type TestCase struct {
		Name     string
		Given    string
		Expected string
	}
	testCases := []TestCase{
		{
			Name:     "missing module",
			Given:    `{stream: "latest"}`,
			Expected: "Defaults module name is unset.",
		},
		{
			Name:     "module twice",
			Given:    `{module: foo, module: bar}`,
			Expected: "Module name encountered twice.",
		},
		{
			Name:     "stream twice",
			Given:    `{module: foo, stream: a, stream: b}`,
			Expected: "Default stream encountered twice.",
		},
		{
			Name:     "intent twice",
			Given:    `{module: foo, intents: {server: {stream: a}, server: {stream: b}}}`,
			Expected: "Encountered intent name server more than once in defaults",
		},
		{
			Name:     "duplicate profile stream",
			Given:    `{module: foo, profiles: {a: [x], a: [y]}}`,
			Expected: "Key a encountered twice in profile defaults",
		},
	}
	for _, testCase := range testCases {
		yaml := "document: modulemd-defaults\nversion: 1\ndata: " + testCase.Given + "\n"
		index, err := ReadString(yaml, true)
		require.NoError(t, err, testCase.Name)
		require.Len(t, index.Failures, 1, testCase.Name)
		assert.Contains(t, index.Failures[0].Error(), testCase.Expected, testCase.Name)
	}
}

func TestDefaultsMissingModuleIsValidation(t *testing.T) {
	err := NewDefaults("").Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ce.ErrMissingRequired))
	assert.True(t, errors.Is(err, ce.ErrValidation))
}

func TestDefaultsUnknownKeyNonStrict(t *testing.T) {
	yaml := "document: modulemd-defaults\nversion: 1\ndata: {module: foo, colour: blue}\n"

	index, err := ReadString(yaml, false)
	require.NoError(t, err)
	require.Len(t, index.Defaults(), 1)
	assert.Equal(t, "foo", index.Defaults()[0].ModuleName)

	index, err = ReadString(yaml, true)
	require.NoError(t, err)
	assert.Empty(t, index.Defaults())
	require.Len(t, index.Failures, 1)
	assert.Equal(t, DocTypeDefaults, index.Failures[0].DocType)
}
