package changerequest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChangesetUnmarshal_PreservesKeyOrder(t *testing.T) {
	raw := []byte(`{"title[ru]":"Снеки","active":true,"title[en]":"Snacks","sort_order":3}`)

	var cs Changeset
	require.NoError(t, json.Unmarshal(raw, &cs))
	require.Len(t, cs, 4)

	require.Equal(t, Entry{Field: "title", Locale: "ru", Value: "Снеки"}, cs[0])
	require.Equal(t, Entry{Field: "active", Value: true}, cs[1])
	require.Equal(t, Entry{Field: "title", Locale: "en", Value: "Snacks"}, cs[2])
	require.Equal(t, "sort_order", cs[3].Field)
	require.Equal(t, float64(3), cs[3].Value)
}

func TestChangesetMarshal_RoundTripKeepsOrder(t *testing.T) {
	raw := []byte(`{"title[ru]":"Снеки","active":true,"title[en]":"Snacks"}`)

	var cs Changeset
	require.NoError(t, json.Unmarshal(raw, &cs))

	out, err := json.Marshal(cs)
	require.NoError(t, err)
	require.Equal(t, string(raw), string(out))
}

func TestChangesetUnmarshal_RejectsNonObject(t *testing.T) {
	var cs Changeset
	require.Error(t, json.Unmarshal([]byte(`["title[en]"]`), &cs))
	require.Error(t, json.Unmarshal([]byte(`"title[en]"`), &cs))
}

func TestChangesetSet_ReplacesInPlace(t *testing.T) {
	cs := Changeset{
		{Field: "title", Locale: "en", Value: "Old"},
		{Field: "active", Value: false},
	}
	cs.Set("title", "en", "New")
	cs.Set("price", "", 9.99)

	require.Len(t, cs, 3)
	require.Equal(t, "New", cs[0].Value)
	require.Equal(t, "price", cs[2].Field)
}

func TestChangesetLocales_FirstSeenOrderSkipsPlainFields(t *testing.T) {
	cs := Changeset{
		{Field: "title", Locale: "ru", Value: "а"},
		{Field: "active", Value: true},
		{Field: "title", Locale: "en", Value: "a"},
		{Field: "description", Locale: "ru", Value: "б"},
	}
	require.Equal(t, []string{"ru", "en"}, cs.Locales())
}

func TestEntityIDUnmarshal_AcceptsStringAndNumber(t *testing.T) {
	var id EntityID
	require.NoError(t, json.Unmarshal([]byte(`"42"`), &id))
	require.Equal(t, EntityID("42"), id)

	require.NoError(t, json.Unmarshal([]byte(`42`), &id))
	require.Equal(t, EntityID("42"), id)

	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	require.True(t, id.IsZero())

	require.Error(t, json.Unmarshal([]byte(`true`), &id))
}

func TestStatusTerminal(t *testing.T) {
	require.False(t, StatusPending.Terminal())
	require.True(t, StatusApproved.Terminal())
	require.True(t, StatusCanceled.Terminal())
}
