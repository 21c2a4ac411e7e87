// Package locale renders user-facing countdown text in the configured language.
package locale

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-countdown/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// loadBundle parses the embedded locale files once per process.
var loadBundle = sync.OnceValue(func() *i18n.Bundle {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return bundle
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}
		if strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix) == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyFile, name,
		)
	}
	return bundle
})

// Locale translates message keys for one language.
type Locale struct {
	tag       language.Tag
	localizer *i18n.Localizer
}

// New returns the Locale that best matches lang (an IETF tag such as "fr" or
// "fr-CA"). Unknown or empty tags fall back to English.
func New(lang string) *Locale {
	bundle := loadBundle()
	tags := bundle.LanguageTags()

	tag := tags[0]
	if lang != "" {
		_, idx, conf := language.NewMatcher(tags).Match(language.Make(lang))
		if conf != language.No {
			tag = tags[idx]
		}
	}

	return &Locale{
		tag:       tag,
		localizer: i18n.NewLocalizer(bundle, tag.String()),
	}
}

// Languages lists the languages with an embedded translation file.
func Languages() []string {
	tags := loadBundle().LanguageTags()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}

// Lang returns the resolved language tag.
func (l *Locale) Lang() string { return l.tag.String() }

// Msg translates key, returning the key itself when no translation exists.
func (l *Locale) Msg(key string) string {
	msg, err := l.localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return key
	}
	return msg
}

// Countdown phrases the number of days until name's birthday. An empty name
// yields the anonymous wording.
func (l *Locale) Countdown(name string, days int) string {
	anon := name == ""

	var (
		msg string
		err error
	)
	switch {
	case days == 0 && anon:
		msg, err = l.localize(&i18n.LocalizeConfig{MessageID: config.TKeyCountdownAnonT})
	case days == 0:
		msg, err = l.localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyCountdownToday,
			TemplateData: map[string]any{"Name": name},
		})
	case anon:
		msg, err = l.localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyCountdownAnon,
			TemplateData: map[string]any{"Count": days},
			PluralCount:  days,
		})
	default:
		msg, err = l.localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyCountdown,
			TemplateData: map[string]any{"Name": name, "Count": days},
			PluralCount:  days,
		})
	}
	if err == nil && msg != "" {
		return msg
	}

	switch {
	case days == 0 && anon:
		return config.FallbackCountdownAnonT
	case days == 0:
		return fmt.Sprintf(config.FallbackCountdownToday, name)
	case anon:
		return fmt.Sprintf(config.FallbackCountdownAnon, days)
	default:
		return fmt.Sprintf(config.FallbackCountdown, days, name)
	}
}

// EventSummary titles a calendar event. Age 0 of a known birth year is the
// birth itself.
func (l *Locale) EventSummary(name string, age int, yearKnown bool) string {
	var (
		msg string
		err error
	)
	switch {
	case yearKnown && age == 0:
		msg, err = l.localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyEvtSummaryBirth,
			TemplateData: map[string]any{"Name": name},
		})
	case yearKnown:
		msg, err = l.localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyEvtSummaryAge,
			TemplateData: map[string]any{"Name": name, "Age": age},
		})
	default:
		msg, err = l.localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyEvtSummary,
			TemplateData: map[string]any{"Name": name},
		})
	}
	if err == nil && msg != "" {
		return msg
	}

	switch {
	case yearKnown && age == 0:
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	case yearKnown:
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	default:
		return fmt.Sprintf(config.FallbackSummary, name)
	}
}

func (l *Locale) localize(cfg *i18n.LocalizeConfig) (string, error) {
	if l == nil || l.localizer == nil {
		return "", errors.New(config.ErrLocNotInit)
	}
	msg, err := l.localizer.Localize(cfg)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, l.tag.String(),
			config.LogKeyKey, cfg.MessageID,
			config.LogKeyError, err,
		)
		return "", err
	}
	return msg, nil
}
