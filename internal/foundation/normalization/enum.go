// Package normalization canonicalizes user supplied identifiers: enum
// values read from configuration and language codes.
package normalization

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

// Enum maps spellings of a string enum, aliases included, to their values.
// Lookups ignore case and surrounding whitespace.
type Enum[T ~string] struct {
	name     string
	values   map[string]T
	fallback T
}

// NewEnum returns an Enum called name (used in error messages). fallback is
// returned by Or for unknown input.
func NewEnum[T ~string](name string, values map[string]T, fallback T) *Enum[T] {
	e := &Enum[T]{name: name, values: make(map[string]T, len(values)), fallback: fallback}
	for k, v := range values {
		e.values[Key(k)] = v
	}
	return e
}

// Parse returns the value spelled by raw, or a validation error listing the
// accepted spellings.
func (e *Enum[T]) Parse(raw string) (T, error) {
	if v, ok := e.values[Key(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, errors.ValidationError("invalid "+e.name).
		WithContext("value", raw).
		WithContext("valid", e.Spellings()).
		Build()
}

// Or returns the value spelled by raw, or the fallback.
func (e *Enum[T]) Or(raw string) T {
	if v, ok := e.values[Key(raw)]; ok {
		return v
	}
	return e.fallback
}

// Spellings lists the accepted spellings, sorted.
func (e *Enum[T]) Spellings() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Key is the lookup form of an identifier: trimmed and lower-cased.
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LanguageCode canonicalizes a language tag: lower case with '-' between
// subtags, so "pt_BR" and " PT-br " both become "pt-br".
func LanguageCode(code string) string {
	return strings.ReplaceAll(Key(code), "_", "-")
}
