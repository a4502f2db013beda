// Package diff computes the field-by-field comparison an administrator
// reviews before deciding a change request. One algorithm serves every
// entity type; screens render the rows as original -> proposed pairs.
package diff

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/changerequest"
)

// FieldDiff is one review row: the proposed value for a field (or one
// translation slot of it) against what the live entity currently holds.
type FieldDiff struct {
	Field    string `json:"field"`
	Locale   string `json:"locale,omitempty"`
	Original any    `json:"original"`
	Proposed any    `json:"proposed"`
	Changed  bool   `json:"changed"`
}

// Compute returns one FieldDiff per proposed entry, in the proposal's
// insertion order. The proposal is a partial patch: fields present only
// in current are not reported. A field absent from current diffs against
// the empty sentinel of the proposed value's type, never an error.
// Pure and deterministic.
func Compute(current, proposed changerequest.Changeset) []FieldDiff {
	out := make([]FieldDiff, 0, len(proposed))
	for _, e := range proposed {
		original, ok := current.Get(e.Field, e.Locale)
		if !ok {
			original = emptyFor(e.Value)
		}
		out = append(out, FieldDiff{
			Field:    e.Field,
			Locale:   e.Locale,
			Original: original,
			Proposed: e.Value,
			Changed:  !equal(original, e.Value),
		})
	}
	return out
}

// Patch extracts the changed rows as the merge patch to hand to the
// model store, preserving order.
func Patch(diffs []FieldDiff) changerequest.Changeset {
	var out changerequest.Changeset
	for _, d := range diffs {
		if !d.Changed {
			continue
		}
		out = append(out, changerequest.Entry{Field: d.Field, Locale: d.Locale, Value: d.Proposed})
	}
	return out
}

// equal is exact structural equality after normalization: numeric
// strings and every numeric type collapse to float64. Case-sensitive,
// no whitespace trimming.
func equal(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return t
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
		return t
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	default:
		return v
	}
}

// emptyFor picks the "no value yet" sentinel matching the proposed
// value's type.
func emptyFor(proposed any) any {
	switch normalize(proposed).(type) {
	case string:
		return ""
	case float64:
		return float64(0)
	case bool:
		return false
	case []any:
		return []any{}
	case map[string]any:
		return map[string]any{}
	default:
		return nil
	}
}
