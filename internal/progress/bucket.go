package progress

import (
	"sort"
	"time"

	"github.com/woodshedhq/woodshed/internal/dateutil"
)

// Mode is the bucket granularity of an aggregated series.
type Mode string

const (
	ModeDay       Mode = "dia"
	ModeWeek      Mode = "semana"
	ModeFortnight Mode = "quincena"
	ModeMonth     Mode = "mes"
)

// ChooseBucket picks the granularity for a date range. The thresholds balance
// chart readability against density and are load-bearing for the frontend:
// up to 60 days daily, up to 120 weekly, up to 365 fortnightly (1st–15th and
// 16th–end of month), beyond that monthly. The day count is inclusive, so a
// 60-day range still buckets daily and a 61-day range does not.
func ChooseBucket(start, end time.Time) Mode {
	days := dateutil.DaysBetween(start, end)
	switch {
	case days <= 60:
		return ModeDay
	case days <= 120:
		return ModeWeek
	case days <= 365:
		return ModeFortnight
	default:
		return ModeMonth
	}
}

// bucketKey maps a day to the first day of its bucket.
func bucketKey(d time.Time, mode Mode) time.Time {
	switch mode {
	case ModeWeek:
		return dateutil.StartOfMonday(d)
	case ModeFortnight:
		if d.Day() <= 15 {
			return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
		}
		return time.Date(d.Year(), d.Month(), 16, 0, 0, 0, 0, d.Location())
	case ModeMonth:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	default:
		return dateutil.Truncate(d)
	}
}

// Aggregate rolls a daily series up to the given bucket mode. Counters are
// summed. Satisfaction is the average of the day-level averages — not a flat
// mean over raw ratings — which weights every practiced day equally; this
// two-stage averaging is intentional and matches the charts' historic
// behavior. Because the daily series is already zero-filled, empty buckets
// survive as zero entries and the output has no gaps. Buckets come back
// sorted by date.
func Aggregate(daily []Point, mode Mode) []Point {
	if mode == ModeDay || mode == "" {
		return daily
	}

	type group struct {
		point     Point
		ratingSum float64
		ratedDays int
	}
	groups := make(map[string]*group)

	for _, p := range daily {
		day, err := dateutil.ParseLocalDate(p.Date)
		if err != nil {
			continue
		}
		key := dateutil.FormatLocalDate(bucketKey(day, mode))
		g := groups[key]
		if g == nil {
			g = &group{point: Point{Date: key}}
			groups[key] = g
		}
		g.point.TimeSec += p.TimeSec
		g.point.Sessions += p.Sessions
		g.point.Completed += p.Completed
		g.point.Skipped += p.Skipped
		if p.Satisfaction != nil {
			g.ratingSum += *p.Satisfaction
			g.ratedDays++
		}
	}

	out := make([]Point, 0, len(groups))
	for _, g := range groups {
		if g.ratedDays > 0 {
			avg := g.ratingSum / float64(g.ratedDays)
			g.point.Satisfaction = &avg
		}
		out = append(out, g.point)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
