package modulemd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSet(t *testing.T) {
	var s StringSet
	assert.True(t, s.IsEmpty())
	assert.Equal(t, []string{}, s.Values())
	assert.False(t, s.Contains("a"))

	s.Add("b", "a", "b")
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a", "b"}, s.Values())
	assert.True(t, s.Contains("a"))

	s.Remove("a")
	assert.Equal(t, []string{"b"}, s.Values())

	s.Clear()
	assert.True(t, s.IsEmpty())
}

func TestStringSetEqualAndSubset(t *testing.T) {
	a := NewStringSet("x86_64", "i686")
	b := NewStringSet("i686", "x86_64")
	assert.True(t, a.Equal(b))
	assert.True(t, StringSet{}.Equal(NewStringSet()))
	assert.False(t, a.Equal(NewStringSet("i686")))

	assert.True(t, NewStringSet("i686").IsSubsetOf(a))
	assert.True(t, StringSet{}.IsSubsetOf(a))
	assert.False(t, NewStringSet("s390x").IsSubsetOf(a))
	assert.False(t, a.IsSubsetOf(StringSet{}))
}

func TestStringSetCopy(t *testing.T) {
	a := NewStringSet("a")
	b := a.Copy()
	b.Add("b")
	assert.Equal(t, []string{"a"}, a.Values())
	assert.Equal(t, []string{"a", "b"}, b.Values())

	var empty StringSet
	c := empty.Copy()
	c.Add("x")
	assert.True(t, empty.IsEmpty())
}

func TestStringSetAssignmentSharesMembers(t *testing.T) {
	stream := minimalV2()
	stream.RpmAPI.Add("foo")

	shared := stream.RpmAPI
	shared.Add("bar")
	assert.Equal(t, []string{"bar", "foo"}, stream.RpmAPI.Values())

	independent := stream.RpmAPI.Copy()
	independent.Add("baz")
	assert.Equal(t, []string{"bar", "foo"}, stream.RpmAPI.Values())

	other := minimalV2()
	fromEmpty := other.RpmAPI
	fromEmpty.Add("foo")
	assert.True(t, other.RpmAPI.IsEmpty())
}
