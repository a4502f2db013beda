// Package localekey implements the flat wire convention for carrying
// translations inside a single payload: a translatable field for one
// language travels under the key "field[locale]", while non-translatable
// fields keep their plain name.
package localekey

import "strings"

// Encode renders the wire key for a field translated into locale.
// An empty locale yields the plain field name.
func Encode(field, locale string) string {
	if locale == "" {
		return field
	}
	return field + "[" + locale + "]"
}

// Decode splits a wire key into field name and locale. ok is false for
// keys without a well-formed "[locale]" suffix; those are plain fields
// and never an error. Decode is total: every key resolves to exactly one
// of the two shapes.
func Decode(key string) (field, locale string, ok bool) {
	if !strings.HasSuffix(key, "]") {
		return key, "", false
	}
	open := strings.LastIndex(key, "[")
	if open <= 0 {
		// no bracket, or the key starts with one; treat as plain
		return key, "", false
	}
	locale = key[open+1 : len(key)-1]
	if locale == "" {
		return key, "", false
	}
	return key[:open], locale, true
}
