package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := Defaults()

	assert.Equal(t, SourceModeWeb, s.SourceMode)
	assert.Equal(t, DefaultLimit, s.Limit)
	assert.Equal(t, DefaultDisplayCount, s.DisplayCount)
	assert.Equal(t, DefaultRefreshMin, s.RefreshMinutes)
	assert.Equal(t, DefaultPort, s.Port)
	assert.Equal(t, DefaultBindAddr, s.BindAddr)
	assert.Equal(t, DefaultLanguage, s.Language)
}

func TestLoad_YAMLFile(t *testing.T) {
	content := `
source_mode: web
url: https://gramps.example.org/
username: admin
surname_filter: Dupont
limit: 10
display_count: 3
refresh_minutes: 60
port: "9000"
language: fr
`
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := Load(path)
	require.NoError(t, err)

	// Trailing slash is normalized away.
	assert.Equal(t, "https://gramps.example.org", s.URL)
	assert.Equal(t, "admin", s.Username)
	assert.Equal(t, "Dupont", s.SurnameFilter)
	assert.Equal(t, 10, s.Limit)
	assert.Equal(t, 3, s.DisplayCount)
	assert.Equal(t, "9000", s.Port)
	assert.Equal(t, "fr", s.Language)
	assert.Equal(t, 60*time.Minute, s.RefreshInterval())

	// Unset keys keep their defaults.
	assert.Equal(t, DefaultBindAddr, s.BindAddr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	content := `
source_mode: web
url: https://file.example.org
limit: 10
`
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv(EnvPrefix+"URL", "https://env.example.org")
	t.Setenv(EnvPrefix+"SURNAME_FILTER", "Martin")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.org", s.URL, "Environment must win over the file")
	assert.Equal(t, "Martin", s.SurnameFilter)
	assert.Equal(t, 10, s.Limit, "File values without env override must survive")
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv(EnvPrefix+"SOURCE_MODE", SourceModeLocal)
	t.Setenv(EnvPrefix+"LOCAL_PATH", "/data/contacts.vcf")

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, SourceModeLocal, s.SourceMode)
	assert.Equal(t, "/data/contacts.vcf", s.LocalPath)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), ErrSettingsFile)
}

func TestValidate(t *testing.T) {
	valid := func() *Settings {
		s := Defaults()
		s.URL = "https://gramps.local"
		return s
	}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"Valid web settings", func(s *Settings) {}, ""},
		{
			"Valid local settings",
			func(s *Settings) { s.SourceMode = SourceModeLocal; s.LocalPath = "/x.vcf" },
			"",
		},
		{"Web mode without URL", func(s *Settings) { s.URL = "" }, ErrURLEmpty},
		{
			"Local mode without path",
			func(s *Settings) { s.SourceMode = SourceModeLocal },
			ErrLocalPathEmpty,
		},
		{"Unknown mode", func(s *Settings) { s.SourceMode = "carrier-pigeon" }, ErrModeUnsupport},
		{"Empty port", func(s *Settings) { s.Port = "" }, ErrPortRequired},
		{"Non-numeric port", func(s *Settings) { s.Port = "http" }, ErrPortNumber},
		{"Port out of range", func(s *Settings) { s.Port = "70000" }, ErrPortRange},
		{"Zero limit", func(s *Settings) { s.Limit = 0 }, ErrLimitInvalid},
		{"Negative refresh", func(s *Settings) { s.RefreshMinutes = -5 }, ErrIntervalInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestResolvePassword_InlineWins(t *testing.T) {
	s := &Settings{Username: "admin", Password: "inline"}
	s.ResolvePassword()
	assert.Equal(t, "inline", s.Password, "An inline password must not be replaced")
}

func TestResolvePassword_NoUsername(t *testing.T) {
	s := &Settings{}
	s.ResolvePassword()
	assert.Empty(t, s.Password, "Without a username there is no keyring entry to look up")
}
