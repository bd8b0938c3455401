package i18n

import (
	"encoding/json"
	"testing"

	"github.com/EdgarM73/gramps-ha/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LoadsEmbeddedLocales(t *testing.T) {
	tr := New(config.DefaultLanguage)
	require.NotNil(t, tr)

	for _, lang := range config.SupportedLanguages {
		assert.Contains(t, tr.Languages, lang, "Locale %q must be embedded", lang)
	}
}

func TestMsg_FallsBackToKey(t *testing.T) {
	tr := New("en")
	assert.Equal(t, "no_such_key", tr.Msg("no_such_key"))
}

func TestMsgTpl(t *testing.T) {
	tr := New("en")

	msg := tr.MsgTpl(config.TKeySensorNext, map[string]any{"Rank": 2})
	assert.NotEmpty(t, msg)
	assert.Contains(t, msg, "2")

	assert.Empty(t, tr.MsgTpl("no_such_key", nil),
		"A missing templated key signals the caller to use its fallback")
}

func TestMsgTpl_FrenchLocale(t *testing.T) {
	tr := New("fr")

	en := New("en").MsgTpl(config.TKeyEvtSummaryAge, map[string]any{"Name": "Jean", "Age": 40})
	fr := tr.MsgTpl(config.TKeyEvtSummaryAge, map[string]any{"Name": "Jean", "Age": 40})

	assert.NotEmpty(t, fr)
	assert.Contains(t, fr, "Jean")
	assert.NotEqual(t, en, fr, "French locale must differ from English")
}

// TestLocaleIntegrity verifies that every locale file defines the same key
// set, so no language silently falls back for a key another language has.
func TestLocaleIntegrity(t *testing.T) {
	entries, err := localeFS.ReadDir("locales")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	keySets := make(map[string][]string)
	for _, entry := range entries {
		data, err := localeFS.ReadFile("locales/" + entry.Name())
		require.NoError(t, err)

		var content map[string]any
		require.NoError(t, json.Unmarshal(data, &content), "Locale %s must be valid JSON", entry.Name())

		for key := range content {
			keySets[entry.Name()] = append(keySets[entry.Name()], key)
		}
	}

	expected := []string{
		config.TKeySensorNext,
		config.TKeySensorAll,
		config.TKeyEvtSummary,
		config.TKeyEvtSummaryAge,
	}
	for name, keys := range keySets {
		for _, key := range expected {
			assert.Contains(t, keys, key, "Locale %s is missing key %q", name, key)
		}
	}
}
