package billing

import "time"

// =============================================================================
// PERIOD - Inclusive reporting window for the projection engine
// =============================================================================

// Period is an inclusive [Start, End] reporting window.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds a window from two calendar dates, normalizing both.
func NewPeriod(start, end time.Time) Period {
	return Period{Start: NormalizeDate(start), End: NormalizeDate(end)}
}

// CurrentMonth is the default window when a caller supplies none: the first
// through last day of the clock's current month.
func CurrentMonth(clock Clock) Period {
	key := KeyOf(clock.Today())
	return Period{
		Start: key.Date(1),
		End:   key.Date(DaysInMonth(key.Year, key.Month)),
	}
}

// Valid reports whether the window is well-formed.
func (p Period) Valid() bool { return !p.End.Before(p.Start) }

// Contains returns true if t falls within [Start, End].
func (p Period) Contains(t time.Time) bool {
	d := NormalizeDate(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Months returns the billing-period keys the window touches, in order.
func (p Period) Months() []DateKey {
	var keys []DateKey
	last := KeyOf(p.End)
	for k := KeyOf(p.Start); k.BeforeOrEqual(last); k = k.AddMonths(1) {
		keys = append(keys, k)
	}
	return keys
}

func (p Period) String() string {
	return "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + "]"
}
