package intl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSupportedLanguages_EmptyWhitelistReturnsAll(t *testing.T) {
	langs := GetSupportedLanguages(nil)
	require.Len(t, langs, len(allSupportedLanguages))
}

func TestGetSupportedLanguages_FiltersAndIgnoresUnknownCodes(t *testing.T) {
	langs := GetSupportedLanguages([]string{"ru", "fr"})
	require.Len(t, langs, 1)
	require.Equal(t, "ru", langs[0].Code)
}

func TestLocaleSet(t *testing.T) {
	set := LocaleSet([]string{"en", "ru"})
	require.True(t, set["en"])
	require.True(t, set["ru"])
	require.False(t, set["uz"])
	require.False(t, set["fr"])
}
