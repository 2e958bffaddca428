// Package progress turns raw practice-session records into the zero-filled,
// bucketed time series the charts consume. The pipeline is DailySeries →
// ChooseBucket → Aggregate; each stage is a pure function over its inputs.
package progress

import (
	"time"

	"github.com/woodshedhq/woodshed/internal/dateutil"
)

// Record is one finished practice session as stored by the records table.
type Record struct {
	StartedAt       time.Time
	DurationSec     int
	BlocksCompleted int
	BlocksSkipped   int
	// Rating is the student's 1–5 satisfaction score; nil when not given.
	Rating *float64
}

// Point is one entry of a daily or bucketed series. Satisfaction is nil for
// days (or buckets) with no rated sessions, so charts can leave a gap instead
// of plotting zero.
type Point struct {
	Date         string   `json:"fecha"`
	TimeSec      int      `json:"tiempo"`
	Sessions     int      `json:"sesiones"`
	Completed    int      `json:"completados"`
	Skipped      int      `json:"omitidos"`
	Satisfaction *float64 `json:"satisfaccion"`
}

// DailySeries groups records by local calendar day over the inclusive
// [start, end] range. Every day of the range gets an entry, zero-valued when
// nothing was practiced, so consumers never see gaps. Satisfaction per day is
// the plain mean of that day's ratings.
func DailySeries(records []Record, start, end time.Time) []Point {
	from := dateutil.Truncate(start)
	to := dateutil.Truncate(end)
	if to.Before(from) {
		return nil
	}

	type acc struct {
		timeSec, sessions, completed, skipped int
		ratings                               []float64
	}
	byDay := make(map[string]*acc)
	for _, r := range records {
		key := dateutil.FormatLocalDate(r.StartedAt)
		a := byDay[key]
		if a == nil {
			a = &acc{}
			byDay[key] = a
		}
		a.timeSec += r.DurationSec
		a.sessions++
		a.completed += r.BlocksCompleted
		a.skipped += r.BlocksSkipped
		if r.Rating != nil && *r.Rating > 0 {
			a.ratings = append(a.ratings, *r.Rating)
		}
	}

	var series []Point
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := dateutil.FormatLocalDate(d)
		p := Point{Date: key}
		if a, ok := byDay[key]; ok {
			p.TimeSec = a.timeSec
			p.Sessions = a.sessions
			p.Completed = a.completed
			p.Skipped = a.skipped
			if len(a.ratings) > 0 {
				sum := 0.0
				for _, v := range a.ratings {
					sum += v
				}
				avg := sum / float64(len(a.ratings))
				p.Satisfaction = &avg
			}
		}
		series = append(series, p)
	}
	return series
}
