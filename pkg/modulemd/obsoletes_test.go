package modulemd

import (
	"errors"
	"testing"
	"time"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObsoletesFixture(t *testing.T) {
	o, ok := readOne(t, readFixture("obsoletes.yaml"), true).(*Obsoletes)
	require.True(t, ok)
	assert.Equal(t, time.Date(2022, 1, 24, 8, 54, 0, 0, time.UTC), o.Modified)
	assert.Equal(t, "nodejs", o.Module)
	assert.Equal(t, "11", o.Stream)
	assert.Equal(t, "6c81f848", o.Context)
	require.NotNil(t, o.EOLDate)
	assert.Equal(t, "12", o.ObsoletedByStream)

	assert.False(t, o.IsActive(time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, o.IsActive(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))

	out, err := EmitString(o)
	require.NoError(t, err)
	assert.Equal(t, `---
document: modulemd-obsoletes
version: 1
data:
  modified: 2022-01-24T08:54Z
  module: nodejs
  stream: "11"
  context: 6c81f848
  eol_date: 2022-12-31T00:00Z
  message: Node.js 11 is end of life.
  obsoleted_by:
    module: nodejs
    stream: "12"
...
`, out)
}

func TestObsoletesValidate(t *testing.T) {
	type TestCase struct {
		Name     string
		Given    func(*Obsoletes)
		Expected string
	}
	modified := time.Date(2022, 1, 24, 8, 54, 0, 0, time.UTC)
	testCases := []TestCase{
		{Name: "valid", Given: func(o *Obsoletes) {}, Expected: ""},
		{Name: "modified", Given: func(o *Obsoletes) { o.Modified = time.Time{} }, Expected: "Obsoletes modified is empty."},
		{Name: "module", Given: func(o *Obsoletes) { o.Module = "" }, Expected: "Obsoletes module name is unset."},
		{Name: "stream", Given: func(o *Obsoletes) { o.Stream = "" }, Expected: "Obsoletes stream is unset."},
		{Name: "message", Given: func(o *Obsoletes) { o.Message = "" }, Expected: "Obsoletes message is unset."},
		{
			Name: "reset with eol",
			Given: func(o *Obsoletes) {
				o.Reset = true
				o.SetEOLDate(modified)
			},
			Expected: "Obsoletes cannot have both eol_date and reset attributes set.",
		},
		{
			Name: "reset with obsoleted_by",
			Given: func(o *Obsoletes) {
				o.Reset = true
				o.ObsoletedByModule = "nodejs"
				o.ObsoletedByStream = "12"
			},
			Expected: "Obsoletes cannot have both obsoleted_by and reset attributes set.",
		},
		{
			Name:     "half obsoleted_by",
			Given:    func(o *Obsoletes) { o.ObsoletedByModule = "nodejs" },
			Expected: "Obsoletes obsoleted by module name and module stream have to be set together.",
		},
	}
	for _, testCase := range testCases {
		t.Log(testCase.Name)
		o := NewObsoletes(modified, "nodejs", "11", "message")
		testCase.Given(o)
		err := o.Validate()
		if testCase.Expected == "" {
			assert.NoError(t, err)
			continue
		}
		require.Error(t, err)
		assert.True(t, errors.Is(err, ce.ErrValidation))
		assert.Equal(t, testCase.Expected, err.Error())
	}
}

func TestObsoletesParseValidates(t *testing.T) {
	yaml := `
document: modulemd-obsoletes
version: 1
data:
  modified: 2022-01-24T08:54Z
  module: nodejs
  stream: "11"
`
	index, err := ReadString(yaml, false)
	require.NoError(t, err)
	require.Len(t, index.Failures, 1)
	assert.Equal(t, "Obsoletes message is unset.", index.Failures[0].Error())
}

func TestObsoletesCopy(t *testing.T) {
	o := NewObsoletes(time.Date(2022, 1, 24, 8, 54, 30, 0, time.UTC), "nodejs", "11", "message")
	assert.Equal(t, 0, o.Modified.Second())
	o.SetEOLDate(time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC))
	clone := o.Copy()
	require.True(t, o.Equals(clone))
	*clone.EOLDate = clone.EOLDate.Add(time.Hour)
	assert.False(t, o.Equals(clone))
	assert.Nil(t, (*Obsoletes)(nil).Copy())
}
