package session

import "testing"

// TestDurationExcludesNoTimer verifies the canonical example: a 60s timed
// exercise, a 30s no-timer exercise, and a round repeating the timed one twice
// totals 180 seconds — the no-timer block never counts.
func TestDurationExcludesNoTimer(t *testing.T) {
	s := &Session{
		Exercises: []Exercise{
			{Code: "A", Type: "TC", DurationSec: 60},
			{Code: "B", Type: NoTimerType, DurationSec: 30},
		},
		Rounds: []Round{
			{Exercises: []string{"A"}, Repetitions: 2},
		},
	}

	if got := Duration(s); got != 180 {
		t.Errorf("Duration = %d, want 180", got)
	}
}

// TestDurationRoundMultiplication verifies per-pass sums multiply by the
// repetition count and orphan references contribute nothing.
func TestDurationRoundMultiplication(t *testing.T) {
	s := &Session{
		Exercises: []Exercise{
			{Code: "A", Type: "TC", DurationSec: 45},
			{Code: "B", Type: "TC", DurationSec: 15},
		},
		Rounds: []Round{
			{Exercises: []string{"A", "B", "GHOST"}, Repetitions: 3},
		},
	}

	// Standalone 45+15, round (45+15)*3.
	if got := Duration(s); got != 240 {
		t.Errorf("Duration = %d, want 240", got)
	}
}

// TestDurationNonPositiveRepetitions verifies rounds with zero or negative
// repetitions are skipped entirely.
func TestDurationNonPositiveRepetitions(t *testing.T) {
	cases := []struct {
		reps int
		want int
	}{
		{0, 60},
		{-1, 60},
		{1, 120},
	}
	for _, tc := range cases {
		s := &Session{
			Exercises: []Exercise{{Code: "A", Type: "TC", DurationSec: 60}},
			Rounds:    []Round{{Exercises: []string{"A"}, Repetitions: tc.reps}},
		}
		if got := Duration(s); got != tc.want {
			t.Errorf("repetitions=%d: Duration = %d, want %d", tc.reps, got, tc.want)
		}
	}
}

// TestDurationNil verifies a nil session has zero duration.
func TestDurationNil(t *testing.T) {
	if got := Duration(nil); got != 0 {
		t.Errorf("Duration(nil) = %d, want 0", got)
	}
}

// TestDurationNoTimerInsideRound verifies no-timer exercises are excluded from
// round passes too, not just the standalone sum.
func TestDurationNoTimerInsideRound(t *testing.T) {
	s := &Session{
		Exercises: []Exercise{
			{Code: "A", Type: "TC", DurationSec: 60},
			{Code: "AD1", Type: NoTimerType, DurationSec: 300},
		},
		Rounds: []Round{
			{Exercises: []string{"A", "AD1"}, Repetitions: 2},
		},
	}

	// Standalone: 60. Round: 60*2. AD1 never counts.
	if got := Duration(s); got != 180 {
		t.Errorf("Duration = %d, want 180", got)
	}
}
