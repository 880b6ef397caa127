package foundation

import (
	"sort"
	"strings"
)

// defaultNormalizer provides standard string normalization.
func defaultNormalizer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalizer maps loosely formatted strings onto a closed set of values.
type Normalizer[T comparable] struct {
	validValues map[string]T
	validKeys   []string
}

// NewNormalizer creates a normalizer with a map of valid string->value pairs.
func NewNormalizer[T comparable](values map[string]T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		nk := defaultNormalizer(k)
		normalized[nk] = v
		keys = append(keys, nk)
	}
	sort.Strings(keys)

	return &Normalizer[T]{
		validValues: normalized,
		validKeys:   keys,
	}
}

// Lookup converts raw to a known value, reporting whether it was recognized.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	value, ok := n.validValues[defaultNormalizer(raw)]
	return value, ok
}

// NormalizeOr returns the known value for raw, or fallback when unrecognized.
func (n *Normalizer[T]) NormalizeOr(raw string, fallback T) T {
	if value, ok := n.Lookup(raw); ok {
		return value
	}
	return fallback
}

// Keys returns the sorted normalized keys.
func (n *Normalizer[T]) Keys() []string {
	out := make([]string, len(n.validKeys))
	copy(out, n.validKeys)
	return out
}
