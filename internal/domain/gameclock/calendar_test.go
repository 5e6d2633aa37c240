package gameclock

import (
	"testing"
	"time"
)

func TestWeekStartIsMondayMidnight(t *testing.T) {
	c := UTC()
	cases := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{
			name: "mid-week",
			at:   time.Date(2026, 8, 27, 15, 30, 0, 0, time.UTC), // Thursday
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday midnight is its own week start",
			at:   time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to previous monday",
			at:   time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		got := c.WeekStart(tc.at)
		if !got.Equal(tc.want) {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestWeekEndIsSevenDaysLater(t *testing.T) {
	c := UTC()
	at := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	if got := c.WeekEnd(at).Sub(c.WeekStart(at)); got != WeekDuration {
		t.Fatalf("expected exactly 7 days, got %s", got)
	}
}

func TestSameWeek(t *testing.T) {
	c := UTC()
	mon := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	sun := time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC)
	nextMon := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	if !c.SameWeek(mon, sun) {
		t.Fatalf("expected monday and sunday in same week")
	}
	if c.SameWeek(sun, nextMon) {
		t.Fatalf("expected week rollover at monday midnight")
	}
}

func TestDayOfWeekMondayBased(t *testing.T) {
	c := UTC()
	mon := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := c.DayOfWeek(mon.AddDate(0, 0, i)); got != i {
			t.Fatalf("day %d: expected %d, got %d", i, i, got)
		}
	}
}

func TestMinuteOfWeekRoundTrip(t *testing.T) {
	c := UTC()
	at := time.Date(2026, 8, 26, 9, 15, 0, 0, time.UTC)
	ws := c.WeekStart(at)
	min := c.MinuteOfWeek(at)
	if min != 2*MinutesPerDay+9*60+15 {
		t.Fatalf("unexpected minute of week: %d", min)
	}
	if !At(ws, min).Equal(at) {
		t.Fatalf("expected At to invert MinuteOfWeek")
	}
}
