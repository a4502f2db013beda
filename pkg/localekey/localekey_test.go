package localekey

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		field  string
		locale string
	}{
		{"title", "en"},
		{"title", "ru"},
		{"description", "uz"},
		{"seo_text", "en"},
	}
	for _, tc := range cases {
		key := Encode(tc.field, tc.locale)
		field, locale, ok := Decode(key)
		if !ok {
			t.Fatalf("Decode(%q): expected localized key", key)
		}
		if field != tc.field || locale != tc.locale {
			t.Fatalf("Decode(%q) = (%q, %q), want (%q, %q)", key, field, locale, tc.field, tc.locale)
		}
	}
}

func TestEncodePlainField(t *testing.T) {
	if got := Encode("active", ""); got != "active" {
		t.Fatalf("Encode plain = %q, want %q", got, "active")
	}
}

func TestDecodePlainKeys(t *testing.T) {
	t.Run("no brackets", func(t *testing.T) {
		field, locale, ok := Decode("active")
		if ok || field != "active" || locale != "" {
			t.Fatalf("Decode(active) = (%q, %q, %v)", field, locale, ok)
		}
	})

	t.Run("unterminated bracket", func(t *testing.T) {
		field, _, ok := Decode("title[en")
		if ok || field != "title[en" {
			t.Fatalf("expected plain field, got (%q, %v)", field, ok)
		}
	})

	t.Run("empty locale", func(t *testing.T) {
		_, _, ok := Decode("title[]")
		if ok {
			t.Fatalf("title[] must decode as plain")
		}
	})

	t.Run("leading bracket", func(t *testing.T) {
		_, _, ok := Decode("[en]")
		if ok {
			t.Fatalf("[en] must decode as plain")
		}
	})
}

// Every key decodes to exactly one of {plain, (field, locale)}; Decode
// never panics or errors regardless of input.
func TestDecodeIsTotal(t *testing.T) {
	keys := []string{"", "a", "[", "]", "[]", "a[b]c", "x[y][z]", "price", "title[en]"}
	for _, key := range keys {
		field, locale, ok := Decode(key)
		if ok && (field == "" || locale == "") {
			t.Fatalf("Decode(%q): localized result with empty part (%q, %q)", key, field, locale)
		}
		if !ok && field == "" && key != "" {
			t.Fatalf("Decode(%q): plain result lost the key", key)
		}
	}
}

func TestDecodeNestedSuffixUsesLastBracket(t *testing.T) {
	field, locale, ok := Decode("meta[title][en]")
	if !ok || field != "meta[title]" || locale != "en" {
		t.Fatalf("Decode = (%q, %q, %v)", field, locale, ok)
	}
}
