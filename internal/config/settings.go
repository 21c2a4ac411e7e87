package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Settings is the user-editable configuration, read from a YAML file.
//
// Only the file given by --config, or by $GO_COUNTDOWN_CONFIG, is read; when
// neither is set the per-user default location is tried and silently skipped
// if absent. Command-line flags override whatever the file says.
type Settings struct {
	// Language selects the output locale (ISO 639-1).
	Language string `yaml:"language"`

	// Source describes where the contact book lives.
	Source SourceSettings `yaml:"source"`

	// Server configures --serve.
	Server ServerSettings `yaml:"server"`

	// Reminder adds a VALARM to each generated calendar event.
	Reminder ReminderSettings `yaml:"reminder"`
}

// SourceSettings describes the contact book.
type SourceSettings struct {
	// Mode is SourceModeLocal or SourceModeWeb.
	Mode string `yaml:"mode"`

	// LocalPath is the .vcf file for local mode.
	LocalPath string `yaml:"local_path"`

	// URL is the CardDAV/WebDAV address for web mode.
	URL string `yaml:"url"`

	// User is the Basic Auth user. The password lives in the OS keyring.
	User string `yaml:"user"`
}

// ServerSettings configures the HTTP server and the sync worker.
type ServerSettings struct {
	Port string `yaml:"port"`

	// RefreshMinutes is the sync period. 0 syncs once at startup only.
	RefreshMinutes int `yaml:"refresh_minutes"`

	// UpcomingDays is the default window of GET /upcoming.
	UpcomingDays int `yaml:"upcoming_days"`
}

// ReminderSettings mirrors an iCalendar alarm trigger.
type ReminderSettings struct {
	Enabled   bool   `yaml:"enabled"`
	Value     int    `yaml:"value"`
	Unit      string `yaml:"unit"`      // UnitDays, UnitHours or UnitMinutes
	Direction string `yaml:"direction"` // DirBefore or DirAfter
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		Language: DefaultLanguage,
		Source: SourceSettings{
			Mode: SourceModeLocal,
		},
		Server: ServerSettings{
			Port:           DefaultPort,
			RefreshMinutes: DefaultRefreshMin,
			UpcomingDays:   DefaultUpcomingDays,
		},
		Reminder: ReminderSettings{
			Value:     DefaultReminderValue,
			Unit:      UnitDays,
			Direction: DirBefore,
		},
	}
}

// ResolveSettingsPath picks the settings file: the explicit path, then the
// environment variable, then the per-user config directory. The boolean is
// true when the path was requested explicitly and must therefore exist.
func ResolveSettingsPath(explicit string) (string, bool, error) {
	if explicit != "" {
		return explicit, true, nil
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, true, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, AppID, SettingsFileName), false, nil
}

// LoadSettings reads path over the defaults and validates the result. A missing
// file is an error only when required is true.
func LoadSettings(path string, required bool) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}

	// Unmarshalling over the defaults keeps every key the file omits.
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsParse, err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	slog.Debug(MsgSettings,
		LogKeyComponent, CompSettings,
		LogKeyPath, path,
		LogKeyMode, s.Source.Mode,
	)
	return s, nil
}

// Validate checks every field that has a closed set of values or a range.
func (s Settings) Validate() error {
	if !slices.Contains(SupportedLanguages, s.Language) {
		return fmt.Errorf("%s: %q", ErrLanguage, s.Language)
	}

	switch s.Source.Mode {
	case SourceModeLocal, SourceModeWeb:
	default:
		return fmt.Errorf("%s: %q", ErrModeUnsupport, s.Source.Mode)
	}

	if err := ValidatePort(s.Server.Port); err != nil {
		return err
	}
	if s.Server.RefreshMinutes < 0 {
		return errors.New(ErrIntervalNegative)
	}
	if s.Server.UpcomingDays < 0 {
		return errors.New(ErrInvalidWithin)
	}

	if s.Reminder.Enabled {
		if s.Reminder.Value <= 0 {
			return errors.New(ErrReminderValue)
		}
		switch s.Reminder.Unit {
		case UnitDays, UnitHours, UnitMinutes:
		default:
			return fmt.Errorf("%s: %q", ErrReminderUnit, s.Reminder.Unit)
		}
		switch s.Reminder.Direction {
		case DirBefore, DirAfter:
		default:
			return fmt.Errorf("%s: %q", ErrReminderDir, s.Reminder.Direction)
		}
	}
	return nil
}

// ValidatePort checks that port is a number in [MinPort, MaxPort].
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// ReminderTrigger builds the ISO8601 duration used as VALARM TRIGGER, e.g.
// "-P1D" for one day before or "PT2H" for two hours after. It is empty when
// reminders are disabled.
func (s Settings) ReminderTrigger() string {
	r := s.Reminder
	if !r.Enabled {
		return ""
	}

	sign := ISOPeriodPrefix
	if r.Direction == DirBefore {
		sign = ISONegativePrefix
	}

	switch r.Unit {
	case UnitHours:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTime, r.Value, ISOHour)
	case UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTime, r.Value, ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, r.Value, ISODay)
	}
}
