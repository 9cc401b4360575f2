package billing_test

import (
	"testing"
	"time"

	"github.com/vinculo/billing-engine/billing"
)

func TestCurrentMonth_SpansFirstToLastDay(t *testing.T) {
	clock := billing.NewFixedClock(2024, time.February, 14)
	p := billing.CurrentMonth(clock)

	if !p.Start.Equal(billing.NewDate(2024, time.February, 1)) {
		t.Errorf("start %v, want 2024-02-01", p.Start.Format("2006-01-02"))
	}
	if !p.End.Equal(billing.NewDate(2024, time.February, 29)) {
		t.Errorf("end %v, want 2024-02-29 (leap year)", p.End.Format("2006-01-02"))
	}
}

func TestPeriodContains_InclusiveBounds(t *testing.T) {
	p := billing.NewPeriod(billing.NewDate(2024, time.March, 1), billing.NewDate(2024, time.March, 31))

	cases := []struct {
		day  time.Time
		want bool
	}{
		{billing.NewDate(2024, time.March, 1), true},
		{billing.NewDate(2024, time.March, 31), true},
		{billing.NewDate(2024, time.March, 15), true},
		{billing.NewDate(2024, time.February, 29), false},
		{billing.NewDate(2024, time.April, 1), false},
	}
	for _, c := range cases {
		if got := p.Contains(c.day); got != c.want {
			t.Errorf("Contains(%v) = %v, want %v", c.day.Format("2006-01-02"), got, c.want)
		}
	}
}

func TestPeriodMonths_CrossesYearBoundary(t *testing.T) {
	p := billing.NewPeriod(billing.NewDate(2024, time.November, 15), billing.NewDate(2025, time.February, 3))

	got := p.Months()
	want := []billing.DateKey{
		{Year: 2024, Month: time.November},
		{Year: 2024, Month: time.December},
		{Year: 2025, Month: time.January},
		{Year: 2025, Month: time.February},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d months, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("month %d = %v, want %v", i, got[i], want[i])
		}
	}
}
