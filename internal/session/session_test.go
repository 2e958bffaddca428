package session

import "testing"

// TestEnsureRoundIDsAssignsMissing verifies that rounds without an id get one
// and rounds that already carry an id keep it.
func TestEnsureRoundIDsAssignsMissing(t *testing.T) {
	s := &Session{
		Rounds: []Round{
			{ID: "keep-me", Exercises: []string{"A"}, Repetitions: 1},
			{Exercises: []string{"B"}, Repetitions: 2},
		},
	}

	out := EnsureRoundIDs(s)
	if out.Rounds[0].ID != "keep-me" {
		t.Errorf("existing id changed: %q", out.Rounds[0].ID)
	}
	if out.Rounds[1].ID == "" {
		t.Error("missing id was not assigned")
	}
}

// TestEnsureRoundIDsIdempotent verifies that a second pass changes nothing:
// ids assigned once are stable.
func TestEnsureRoundIDsIdempotent(t *testing.T) {
	s := &Session{Rounds: []Round{{Exercises: []string{"A"}, Repetitions: 1}}}

	first := EnsureRoundIDs(s)
	second := EnsureRoundIDs(first)
	if first.Rounds[0].ID != second.Rounds[0].ID {
		t.Errorf("id changed across passes: %q then %q", first.Rounds[0].ID, second.Rounds[0].ID)
	}
}

// TestEnsureRoundIDsNoMutation verifies the input session is left untouched.
func TestEnsureRoundIDsNoMutation(t *testing.T) {
	s := &Session{Rounds: []Round{{Exercises: []string{"A"}, Repetitions: 1}}}

	_ = EnsureRoundIDs(s)
	if s.Rounds[0].ID != "" {
		t.Errorf("input mutated: round id = %q", s.Rounds[0].ID)
	}
}

// TestEnsureRoundIDsNil verifies nil passes through.
func TestEnsureRoundIDsNil(t *testing.T) {
	if EnsureRoundIDs(nil) != nil {
		t.Error("EnsureRoundIDs(nil) != nil")
	}
}

// TestExercisesByCodeFirstWins verifies that when the pool repeats a code the
// first occurrence is the one resolved, matching flattening order.
func TestExercisesByCodeFirstWins(t *testing.T) {
	s := &Session{
		Exercises: []Exercise{
			{Code: "A", DurationSec: 60},
			{Code: "A", DurationSec: 999},
			{Code: "B", DurationSec: 30},
		},
	}

	m := ExercisesByCode(s)
	if len(m) != 2 {
		t.Fatalf("got %d entries, want 2", len(m))
	}
	if m["A"].DurationSec != 60 {
		t.Errorf("duplicate code resolved to later entry: duration %d, want 60", m["A"].DurationSec)
	}
}
