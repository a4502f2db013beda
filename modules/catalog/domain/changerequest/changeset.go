package changerequest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/oliver-kandagor/catalog-admin/pkg/localekey"
)

// Entry is one proposed value: a plain field (empty Locale) or one
// translation slot of a translatable field.
type Entry struct {
	Field  string `json:"field"`
	Locale string `json:"locale,omitempty"`
	Value  any    `json:"value"`
}

// Key renders the entry's wire key ("active", "title[en]").
func (e Entry) Key() string {
	return localekey.Encode(e.Field, e.Locale)
}

// Changeset is an insertion-ordered set of proposed values. Order is
// part of the review contract: diffs are rendered in the order the
// proposer sent the fields. On the wire it is the flat
// {"title[en]": ..., "active": ...} object the dashboard has always
// spoken; in memory the locale qualifier is already split off.
type Changeset []Entry

func (cs Changeset) IsEmpty() bool { return len(cs) == 0 }

// Get returns the value stored for (field, locale) and whether it exists.
func (cs Changeset) Get(field, locale string) (any, bool) {
	for _, e := range cs {
		if e.Field == field && e.Locale == locale {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for (field, locale) in place, or appends a new
// entry preserving insertion order.
func (cs *Changeset) Set(field, locale string, value any) {
	for i, e := range *cs {
		if e.Field == field && e.Locale == locale {
			(*cs)[i].Value = value
			return
		}
	}
	*cs = append(*cs, Entry{Field: field, Locale: locale, Value: value})
}

// Locales returns the distinct locale codes referenced by the changeset,
// in first-seen order. Plain fields contribute nothing.
func (cs Changeset) Locales() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range cs {
		if e.Locale == "" || seen[e.Locale] {
			continue
		}
		seen[e.Locale] = true
		out = append(out, e.Locale)
	}
	return out
}

// Wire flattens the changeset into its wire-keyed map form. Order is
// lost; use only where ordering does not matter (audit snapshots).
func (cs Changeset) Wire() map[string]any {
	out := make(map[string]any, len(cs))
	for _, e := range cs {
		out[e.Key()] = e.Value
	}
	return out
}

// MarshalJSON emits the flat wire object, preserving entry order.
func (cs Changeset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range cs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the flat wire object token by token, keeping the
// sender's key order. encoding/json map decoding would lose it.
func (cs *Changeset) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("changeset: expected JSON object, got %v", tok)
	}

	out := Changeset{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("changeset: expected string key, got %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		field, locale, _ := localekey.Decode(key)
		out = append(out, Entry{Field: field, Locale: locale, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*cs = out
	return nil
}
