package configuration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T) (*Configuration, error) {
	t.Helper()
	t.Setenv("LOG_PATH", filepath.Join(t.TempDir(), "app.log"))
	c := &Configuration{}
	err := c.load(nil)
	if err == nil {
		t.Cleanup(c.Unload)
	}
	return c, err
}

func TestLoad_Defaults(t *testing.T) {
	c, err := loadConfig(t)
	require.NoError(t, err)

	require.Equal(t, ResubmissionOverwrite, c.Moderation.ResubmissionPolicy)
	require.Equal(t, []string{"en", "ru"}, c.SupportedLocales)
	require.Equal(t, 25, c.PageSize)
	require.Equal(t, 100, c.MaxPageSize)
}

func TestLoad_NormalizesResubmissionPolicy(t *testing.T) {
	t.Setenv("MODERATION_RESUBMISSION_POLICY", "  NEW_REQUEST ")
	c, err := loadConfig(t)
	require.NoError(t, err)
	require.Equal(t, ResubmissionNewRequest, c.Moderation.ResubmissionPolicy)
}

func TestLoad_RejectsUnknownResubmissionPolicy(t *testing.T) {
	t.Setenv("MODERATION_RESUBMISSION_POLICY", "merge")
	_, err := loadConfig(t)
	require.Error(t, err)
}

func TestLoad_CleansLocaleList(t *testing.T) {
	t.Setenv("SUPPORTED_LOCALES", " en , RU ,, uz ")
	c, err := loadConfig(t)
	require.NoError(t, err)
	require.Equal(t, []string{"en", "ru", "uz"}, c.SupportedLocales)
}

func TestLoad_RejectsUnknownLocale(t *testing.T) {
	t.Setenv("SUPPORTED_LOCALES", "en,fr")
	_, err := loadConfig(t)
	require.Error(t, err)
}
