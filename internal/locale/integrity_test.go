package locale_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-countdown/internal/config"
)

// TestI18nIntegrity ensures that every translation key defined in config.go
// exists in each locale file.
func TestI18nIntegrity(t *testing.T) {
	keys := []string{
		config.TKeyCountdown,
		config.TKeyCountdownToday,
		config.TKeyCountdownAnon,
		config.TKeyCountdownAnonT,
		config.TKeyEvtSummary,
		config.TKeyEvtSummaryAge,
		config.TKeyEvtSummaryBirth,
		config.TKeyColName,
		config.TKeyColDate,
		config.TKeyColDays,
		config.TKeyColAge,
		config.TKeyFormatDate,
		config.TKeyAgeBirth,
		config.TKeyListEmpty,
	}
	defined := make(map[string]bool, len(keys))
	for _, k := range keys {
		defined[k] = true
	}

	files, err := filepath.Glob(filepath.Join("locales", "active.*.json"))
	require.NoError(t, err)
	require.Len(t, files, len(config.SupportedLanguages), "one file per supported language")

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			content, err := os.ReadFile(path)
			require.NoError(t, err)

			var jsonMap map[string]any
			require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")

			for key := range defined {
				_, exists := jsonMap[key]
				assert.Truef(t, exists, "Key '%s' is missing in %s", key, path)
			}

			for jsonKey := range jsonMap {
				if strings.HasPrefix(jsonKey, "_") {
					continue
				}
				assert.Truef(t, defined[jsonKey], "Key '%s' in %s has no constant", jsonKey, path)
			}
		})
	}
}
