package modulemd

import (
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"
)

// StringSet is an unordered set of strings that always iterates in sorted
// order. The zero value is an empty set ready to use.
//
// A StringSet holds a reference to its members. Assigning a non-empty set
// shares the members, so adding through either value changes both, while an
// empty set allocates on the first Add and stays independent. Use Copy
// before modifying a set taken from another value.
type StringSet struct {
	set mapset.Set[string]
}

func NewStringSet(values ...string) StringSet {
	s := StringSet{}
	s.Add(values...)
	return s
}

func (s *StringSet) Add(values ...string) {
	if len(values) == 0 {
		return
	}
	if s.set == nil {
		s.set = mapset.NewThreadUnsafeSet[string]()
	}
	for _, v := range values {
		s.set.Add(v)
	}
}

func (s *StringSet) Remove(value string) {
	if s.set != nil {
		s.set.Remove(value)
	}
}

func (s *StringSet) Clear() {
	s.set = nil
}

func (s StringSet) Contains(value string) bool {
	return s.set != nil && s.set.Contains(value)
}

func (s StringSet) Len() int {
	if s.set == nil {
		return 0
	}
	return s.set.Cardinality()
}

func (s StringSet) IsEmpty() bool {
	return s.Len() == 0
}

// Values returns the members sorted.
func (s StringSet) Values() []string {
	if s.set == nil {
		return []string{}
	}
	values := s.set.ToSlice()
	slices.Sort(values)
	return values
}

func (s StringSet) Equal(other StringSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	return s.set.Equal(other.set)
}

// IsSubsetOf returns true when every member of s is in other.
func (s StringSet) IsSubsetOf(other StringSet) bool {
	if s.Len() == 0 {
		return true
	}
	if other.Len() == 0 {
		return false
	}
	return s.set.IsSubset(other.set)
}

func (s StringSet) Copy() StringSet {
	if s.set == nil {
		return StringSet{}
	}
	return StringSet{set: s.set.Clone()}
}
