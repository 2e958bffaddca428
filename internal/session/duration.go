package session

// Duration returns the total planned practice time of a session in seconds.
//
// Standalone contribution: every pool exercise outside the no-timer category,
// regardless of round membership. Round contribution: the per-pass sum of the
// round's resolvable, timed exercises multiplied by its repetitions (zero or
// negative repetitions contribute nothing). The two contributions are additive
// with no cross-context dedup: an exercise listed at top level and referenced
// by a round counts in both. That double-count is observed behavior of the
// authoring tool and is kept as-is.
func Duration(s *Session) int {
	if s == nil {
		return 0
	}

	total := 0
	for _, e := range s.Exercises {
		if e.Type != NoTimerType {
			total += e.DurationSec
		}
	}

	pool := ExercisesByCode(s)
	for _, r := range s.Rounds {
		if r.Repetitions <= 0 {
			continue
		}
		perPass := 0
		for _, code := range r.Exercises {
			e, ok := pool[code]
			if !ok || e.Type == NoTimerType {
				continue
			}
			perPass += e.DurationSec
		}
		total += perPass * r.Repetitions
	}

	return total
}
