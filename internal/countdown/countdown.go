// Package countdown computes how many days remain until the next occurrence of
// a yearly recurring date such as a birthday.
//
// Every function here is pure: the reference "today" is always an explicit
// argument. Only CalculateNow reads a Clock, and it is meant for the outermost
// call boundary.
package countdown

import (
	"fmt"
	"time"
)

// MaxDays bounds the result of Calculate.
const MaxDays = 366

// Birthday is a CalendarDate whose Month and Day identify a yearly recurring
// date. Year is the birth year, or 0 when unknown; it never affects the
// countdown.
type Birthday CalendarDate

// YearKnown reports whether the birth year was supplied.
func (b Birthday) YearKnown() bool { return b.Year != 0 }

// String renders YYYY-MM-DD, or the vCard --MM-DD form when the year is unknown.
func (b Birthday) String() string {
	if !b.YearKnown() {
		return fmt.Sprintf("--%02d-%02d", int(b.Month), b.Day)
	}
	return CalendarDate(b).String()
}

// MarshalText encodes the birthday with String.
func (b Birthday) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b Birthday) isLeapDay() bool { return b.Month == time.February && b.Day == 29 }

// Clock abstracts time.Now() so "today" can be injected.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }

// BirthdayForYear returns the occurrence of b in year. A Feb 29 birthday falls
// on March 1st in non-leap years.
func BirthdayForYear(b Birthday, year int) CalendarDate {
	if b.isLeapDay() && !IsLeapYear(year) {
		return CalendarDate{Year: year, Month: time.March, Day: 1}
	}
	return CalendarDate{Year: year, Month: b.Month, Day: b.Day}
}

// Next returns the earliest occurrence of b that is on or after today.
func Next(b Birthday, today CalendarDate) CalendarDate {
	next := BirthdayForYear(b, today.Year)
	if next.Before(today) {
		next = BirthdayForYear(b, today.Year+1)
	}
	return next
}

// Calculate returns the number of whole days from today to the next occurrence
// of b. The result is 0 when today is the birthday and never exceeds MaxDays.
//
// b must hold a real month/day; use Validate first when the input is untrusted.
func Calculate(b Birthday, today CalendarDate) int {
	return today.DaysUntil(Next(b, today))
}

// CalculateNow is Calculate with today taken from clock in the clock's
// location.
func CalculateNow(b Birthday, clock Clock) int {
	return Calculate(b, DateOf(clock.Now()))
}

// AgeAt returns the age b's owner turns on the occurrence falling in year, or
// 0 when the birth year is unknown.
func AgeAt(b Birthday, year int) int {
	if !b.YearKnown() {
		return 0
	}
	return year - b.Year
}
