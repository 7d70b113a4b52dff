package utils

import (
	"cmp"

	"golang.org/x/exp/slices"
)

// SortedKeys returns the keys of m in ascending order
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// CopyMap returns a shallow copy of m, nil stays nil
func CopyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MapsEqual returns true if both maps hold the same keys, comparing values with eq
func MapsEqual[K comparable, V any](a map[K]V, b map[K]V, eq func(V, V) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !eq(va, vb) {
			return false
		}
	}
	return true
}

// Converts any struct to a pointer to that struct
func Ptr[T any](item T) *T {
	return &item
}
