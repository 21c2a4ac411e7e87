package locale_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/locale"
)

func TestNew_LanguageMatching(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"fr", "fr"},
		{"fr-CA", "fr"},
		{"en-GB", "en"},
		{"de", "en"},
		{"", "en"},
		{"not a tag", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, locale.New(tt.in).Lang())
		})
	}
}

func TestLanguages(t *testing.T) {
	langs := locale.Languages()
	assert.Equal(t, "en", langs[0], "default language comes first")
	assert.ElementsMatch(t, config.SupportedLanguages, langs)
}

func TestCountdown(t *testing.T) {
	tests := []struct {
		lang string
		name string
		days int
		want string
	}{
		{"en", "Alice", 14, "14 days until Alice's birthday"},
		{"en", "Alice", 1, "1 day until Alice's birthday"},
		{"en", "Alice", 0, "Today is Alice's birthday!"},
		{"en", "", 364, "364 days until the birthday"},
		{"en", "", 0, "The birthday is today!"},
		{"fr", "Alice", 14, "14 jours avant l'anniversaire de Alice"},
		{"fr", "Alice", 1, "1 jour avant l'anniversaire de Alice"},
		{"fr", "", 59, "59 jours avant l'anniversaire"},
		{"fr", "", 0, "C'est l'anniversaire aujourd'hui !"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, locale.New(tt.lang).Countdown(tt.name, tt.days))
		})
	}
}

func TestEventSummary(t *testing.T) {
	en := locale.New("en")
	assert.Equal(t, "Birthday: Bob", en.EventSummary("Bob", 0, false))
	assert.Equal(t, "Birthday: Bob (42)", en.EventSummary("Bob", 42, true))
	assert.Equal(t, "Birthday: Bob (birth)", en.EventSummary("Bob", 0, true))

	fr := locale.New("fr")
	assert.Equal(t, "Anniversaire : Bob (42 ans)", fr.EventSummary("Bob", 42, true))
	assert.Equal(t, "Anniversaire : Bob (naissance)", fr.EventSummary("Bob", 0, true))
}

func TestMsg_MissingKeyReturnsKey(t *testing.T) {
	l := locale.New("fr")
	assert.Equal(t, "NOM", l.Msg(config.TKeyColName))
	assert.Equal(t, "no_such_key", l.Msg("no_such_key"))
}

func TestNilLocale_FallsBack(t *testing.T) {
	var l *locale.Locale
	assert.Equal(t, "3 days until Eve's birthday", l.Countdown("Eve", 3))
	assert.Equal(t, "Birthday: Eve (7)", l.EventSummary("Eve", 7, true))
	assert.Equal(t, config.TKeyColAge, l.Msg(config.TKeyColAge))
}
