package billing

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CLOCK - Injectable "today" so every computation is deterministic
// =============================================================================

// Clock supplies the current calendar day. Status resolution and projection
// never read the system clock directly; tests inject a FixedClock.
type Clock interface {
	// Today returns the current day normalized to midnight UTC.
	Today() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Today() time.Time { return NormalizeDate(time.Now().UTC()) }

// FixedClock always reports the same day. For tests.
type FixedClock struct {
	Day time.Time
}

func NewFixedClock(year int, month time.Month, day int) FixedClock {
	return FixedClock{Day: NewDate(year, month, day)}
}

func (c FixedClock) Today() time.Time { return NormalizeDate(c.Day) }

// =============================================================================
// DATE NORMALIZATION
// =============================================================================

// NewDate builds a calendar date at midnight UTC.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NormalizeDate strips time-of-day and timezone so dates compare as calendar
// days. Every date entering the engine passes through here.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the length of the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// DATE KEY - (month, year) identity of a billing period
// =============================================================================

// DateKey identifies a billing period. Two charges belong to the same period
// iff their keys are equal.
type DateKey struct {
	Year  int
	Month time.Month
}

// KeyOf returns the billing period containing t.
func KeyOf(t time.Time) DateKey {
	return DateKey{Year: t.Year(), Month: t.Month()}
}

// KeyOfDay anchors a bare day-of-month to the clock's current month. Legacy
// client records store only the day, so no other month/year is available.
func KeyOfDay(_ int, clock Clock) DateKey {
	return KeyOf(clock.Today())
}

// AddMonths advances the key by n months (n may be negative).
func (k DateKey) AddMonths(n int) DateKey {
	t := NewDate(k.Year, k.Month, 1).AddDate(0, n, 0)
	return KeyOf(t)
}

func (k DateKey) Before(other DateKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

func (k DateKey) After(other DateKey) bool { return other.Before(k) }
func (k DateKey) Equal(other DateKey) bool { return k == other }

func (k DateKey) BeforeOrEqual(other DateKey) bool { return !other.Before(k) }

// Date returns the calendar date for the given day within this period,
// clamped to the month's length (billing day 31 in June -> June 30).
func (k DateKey) Date(day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := DaysInMonth(k.Year, k.Month); day > last {
		day = last
	}
	return NewDate(k.Year, k.Month, day)
}

func (k DateKey) String() string {
	return k.Month.String() + " " + strconv.Itoa(k.Year)
}

// AddMonthsClamped shifts a date by whole months keeping the anchor's
// day-of-month, clamped to the target month's length. A Jan 31 anchor stepped
// one month lands on Feb 28/29, never Mar 2/3.
func AddMonthsClamped(anchor time.Time, months int) time.Time {
	anchor = NormalizeDate(anchor)
	return KeyOf(anchor).AddMonths(months).Date(anchor.Day())
}

// =============================================================================
// BILLING DAY PARSING
// =============================================================================

// ParseBillingDay extracts the day-of-month from a stored billing-day value.
// Accepts a bare day ("15") or a legacy "YYYY-MM-DD" string, of which only
// the day component is used. Unparseable input degrades to day 1; the result
// is clamped to 1..31. Never fails, matching the admin-input leniency policy.
func ParseBillingDay(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 1
	}
	if parts := strings.Split(s, "-"); len(parts) == 3 {
		s = parts[2]
	}
	day, err := strconv.Atoi(strings.TrimLeft(s, "0"))
	if err != nil {
		return 1
	}
	if day < 1 {
		return 1
	}
	if day > 31 {
		return 31
	}
	return day
}
