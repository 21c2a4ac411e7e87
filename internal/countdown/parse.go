package countdown

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-countdown/internal/config"
)

// ErrInvalidBirthday is returned (wrapped) for month/day combinations that do
// not exist, e.g. April 31st or month 13.
var ErrInvalidBirthday = errors.New(config.ErrInvalidBirthday)

// ErrInvalidDate is returned (wrapped) when a reference date cannot be parsed.
var ErrInvalidDate = errors.New(config.ErrInvalidDate)

// NewBirthday builds a validated Birthday. Pass year 0 when the birth year is
// unknown.
func NewBirthday(year int, month time.Month, day int) (Birthday, error) {
	b := Birthday{Year: year, Month: month, Day: day}
	if err := Validate(b); err != nil {
		return Birthday{}, err
	}
	return b, nil
}

// Validate rejects birthdays that never occur. February 29th is accepted when
// the year is unknown, and requires a leap birth year otherwise.
func Validate(b Birthday) error {
	if b.Year < 0 {
		return fmt.Errorf("%w: year %d", ErrInvalidBirthday, b.Year)
	}
	if b.Month < time.January || b.Month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidBirthday, int(b.Month))
	}

	ref := b.Year
	if !b.YearKnown() {
		ref = config.DefaultLeapYear
	}
	if b.Day < 1 || b.Day > DaysInMonth(ref, b.Month) {
		return fmt.Errorf("%w: %s %d", ErrInvalidBirthday, b.Month, b.Day)
	}
	return nil
}

// ParseBirthday reads a birthday in one of the vCard BDAY shapes
// (YYYY-MM-DD, YYYYMMDD, RFC 3339, --MM-DD, --MMDD) or the short MM-DD form.
func ParseBirthday(value string) (Birthday, error) {
	value = strings.TrimSpace(value)

	withYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, layout := range withYear {
		if t, err := time.Parse(layout, value); err == nil {
			// Year 0 is reserved for "unknown".
			if t.Year() == 0 {
				break
			}
			return NewBirthday(t.Year(), t.Month(), t.Day())
		}
	}

	withoutYear := []string{
		config.DateFormatNoYearD,
		config.DateFormatNoYearB,
		config.DateFormatMonthDay,
	}
	for _, layout := range withoutYear {
		if t, err := time.Parse(layout, value); err == nil {
			return NewBirthday(0, t.Month(), t.Day())
		}
	}

	return Birthday{}, fmt.Errorf("%w: %s: %q", ErrInvalidBirthday, config.ErrDateParse, value)
}

// ParseDate reads a full YYYY-MM-DD reference date.
func ParseDate(value string) (CalendarDate, error) {
	t, err := time.Parse(config.DateFormatFullDash, strings.TrimSpace(value))
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return DateOf(t), nil
}
