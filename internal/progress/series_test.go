package progress

import (
	"testing"
	"time"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.Local)
}

func rating(v float64) *float64 { return &v }

// TestDailySeriesZeroFill verifies every day of the range gets an entry, with
// zero values for days without practice.
func TestDailySeriesZeroFill(t *testing.T) {
	records := []Record{
		{StartedAt: at(2026, time.May, 2, 10), DurationSec: 600, BlocksCompleted: 4},
	}

	series := DailySeries(records, at(2026, time.May, 1, 0), at(2026, time.May, 5, 0))
	if len(series) != 5 {
		t.Fatalf("got %d points, want 5", len(series))
	}
	if series[0].Date != "2026-05-01" || series[4].Date != "2026-05-05" {
		t.Errorf("range edges = %q..%q, want 2026-05-01..2026-05-05", series[0].Date, series[4].Date)
	}
	if series[1].TimeSec != 600 || series[1].Sessions != 1 || series[1].Completed != 4 {
		t.Errorf("practiced day = %+v, want 600s / 1 session / 4 completed", series[1])
	}
	for _, i := range []int{0, 2, 3, 4} {
		if series[i].TimeSec != 0 || series[i].Sessions != 0 {
			t.Errorf("day %s not zero-valued: %+v", series[i].Date, series[i])
		}
		if series[i].Satisfaction != nil {
			t.Errorf("day %s has satisfaction without ratings", series[i].Date)
		}
	}
}

// TestDailySeriesSameDayAccumulation verifies multiple sessions on one day sum
// their counters and average their ratings.
func TestDailySeriesSameDayAccumulation(t *testing.T) {
	d := at(2026, time.May, 2, 0)
	records := []Record{
		{StartedAt: d.Add(9 * time.Hour), DurationSec: 600, BlocksCompleted: 3, BlocksSkipped: 1, Rating: rating(4)},
		{StartedAt: d.Add(18 * time.Hour), DurationSec: 300, BlocksCompleted: 2, Rating: rating(2)},
	}

	series := DailySeries(records, d, d)
	if len(series) != 1 {
		t.Fatalf("got %d points, want 1", len(series))
	}
	p := series[0]
	if p.TimeSec != 900 || p.Sessions != 2 || p.Completed != 5 || p.Skipped != 1 {
		t.Errorf("accumulated point = %+v", p)
	}
	if p.Satisfaction == nil || *p.Satisfaction != 3 {
		t.Errorf("satisfaction = %v, want 3 (mean of 4 and 2)", p.Satisfaction)
	}
}

// TestDailySeriesIgnoresNonPositiveRatings verifies nil and zero ratings are
// excluded from the day average instead of dragging it down.
func TestDailySeriesIgnoresNonPositiveRatings(t *testing.T) {
	d := at(2026, time.May, 2, 0)
	records := []Record{
		{StartedAt: d, DurationSec: 100, Rating: rating(0)},
		{StartedAt: d, DurationSec: 100},
		{StartedAt: d, DurationSec: 100, Rating: rating(5)},
	}

	series := DailySeries(records, d, d)
	if series[0].Satisfaction == nil || *series[0].Satisfaction != 5 {
		t.Errorf("satisfaction = %v, want 5 (only the positive rating counts)", series[0].Satisfaction)
	}
}

// TestDailySeriesReversedRange verifies an inverted range yields nothing.
func TestDailySeriesReversedRange(t *testing.T) {
	series := DailySeries(nil, at(2026, time.May, 5, 0), at(2026, time.May, 1, 0))
	if series != nil {
		t.Errorf("got %d points for reversed range, want none", len(series))
	}
}
