package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/countdown"
)

// BirthdayEntry is one contact's countdown, ready for listing or JSON output.
type BirthdayEntry struct {
	// UID is a unique identifier (hash) used for stability in lists.
	UID string `json:"uid"`

	// Name is the display name (Formatted Name or Structured Name).
	Name string `json:"name"`

	// Birthday is the parsed BDAY. Year is 0 when the vCard used --MM-DD.
	Birthday countdown.Birthday `json:"birthday"`

	// YearKnown indicates if the vCard contained a year or just --MM-DD.
	YearKnown bool `json:"year_known"`

	// NextOccurrence is the birthday's next date on or after today.
	NextOccurrence countdown.CalendarDate `json:"next"`

	// DaysUntil is the countdown to NextOccurrence; 0 means today.
	DaysUntil int `json:"days_until"`

	// AgeNext is the age the person will turn at NextOccurrence; 0 on the day
	// of birth. Only meaningful if YearKnown is true.
	AgeNext int `json:"age_next"`
}

// SortByCountdown orders entries by days remaining, then by name.
func SortByCountdown(entries []BirthdayEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.DaysUntil != b.DaysUntil {
			return a.DaysUntil < b.DaysUntil
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// SortBy orders entries by one column: config.SortKeyDays, config.SortKeyName
// or config.SortKeyAge. Entries without a birth year sort after the others by
// age in ascending order.
func SortBy(entries []BirthdayEntry, key string, asc bool) error {
	var less func(a, b BirthdayEntry) bool
	switch key {
	case config.SortKeyDays, "":
		less = func(a, b BirthdayEntry) bool {
			if a.DaysUntil != b.DaysUntil {
				return a.DaysUntil < b.DaysUntil
			}
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case config.SortKeyName:
		less = func(a, b BirthdayEntry) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case config.SortKeyAge:
		less = func(a, b BirthdayEntry) bool {
			if a.YearKnown != b.YearKnown {
				return a.YearKnown
			}
			return a.AgeNext < b.AgeNext
		}
	default:
		return fmt.Errorf("%s: %q", config.ErrSortKey, key)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if asc {
			return less(entries[i], entries[j])
		}
		return less(entries[j], entries[i])
	})
	return nil
}

// Upcoming returns the entries whose birthday is at most within days away, in
// countdown order. A non-positive window keeps every entry. The input slice is
// not modified.
func Upcoming(entries []BirthdayEntry, within int) []BirthdayEntry {
	out := make([]BirthdayEntry, 0, len(entries))
	for _, e := range entries {
		if within <= 0 || e.DaysUntil <= within {
			out = append(out, e)
		}
	}
	SortByCountdown(out)
	return out
}
