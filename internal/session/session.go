// Package session implements the practice-session sequencer: flattening a
// session definition (exercises plus repeated rounds) into a linear execution
// list, and the duration math derived from it. Everything here is a pure
// projection over an already-loaded definition; nothing is mutated or persisted.
package session

import "github.com/google/uuid"

// NoTimerType is the exercise category excluded from timed-duration totals
// (administrative blocks that run without the practice timer).
const NoTimerType = "AD"

// Variation is an alternative content item attached to an exercise. The
// sequencer carries variations through untouched; only the player reads them.
type Variation struct {
	Label       string `json:"label,omitempty"`
	MediaURL    string `json:"mediaUrl,omitempty"`
	DurationSec int    `json:"duracionSeg,omitempty"`
}

// Exercise is an atomic practice activity. Code is unique within a session
// definition, not globally. JSON tags match the legacy wire shape consumed by
// the existing frontend.
type Exercise struct {
	Code        string      `json:"code"`
	Type        string      `json:"tipo"`
	Title       string      `json:"titulo,omitempty"`
	DurationSec int         `json:"duracionSeg"`
	Variations  []Variation `json:"variations,omitempty"`
}

// Round is a sub-sequence of exercise codes repeated a fixed number of times.
// Exercises holds codes into the session pool; a code with no matching pool
// entry is an orphan reference and is skipped during flattening. Shuffled is a
// player hint only — Flatten never applies it.
type Round struct {
	ID          string   `json:"id"`
	Exercises   []string `json:"bloques"`
	Repetitions int      `json:"repeticiones"`
	Shuffled    bool     `json:"aleatoria"`
}

// Session is a single practice unit: an exercise pool, the rounds drawing from
// it, and a free-text focus label for the week.
type Session struct {
	Exercises []Exercise `json:"bloques"`
	Rounds    []Round    `json:"rondas"`
	Focus     string     `json:"foco,omitempty"`
}

// EnsureRoundIDs returns a copy of the session in which every round has an id.
// Rounds that already carry an id keep it, so UI state keyed by round id
// survives repeated calls. The input is never mutated.
func EnsureRoundIDs(s *Session) *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Rounds = make([]Round, len(s.Rounds))
	for i, r := range s.Rounds {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		out.Rounds[i] = r
	}
	return &out
}

// ExercisesByCode builds a code → exercise lookup over the session pool. When
// the pool repeats a code the first occurrence wins, matching flattening order.
func ExercisesByCode(s *Session) map[string]Exercise {
	m := make(map[string]Exercise, len(s.Exercises))
	for _, e := range s.Exercises {
		if _, ok := m[e.Code]; !ok {
			m[e.Code] = e
		}
	}
	return m
}
