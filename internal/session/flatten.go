package session

import (
	"errors"
	"math/rand/v2"
)

// ErrNilSession is returned when a nil session is handed to Flatten.
var ErrNilSession = errors.New("session: nil session")

// Step is one entry of the linear execution list. A step is either a
// standalone exercise (IsRound false, OriginalIndex set) or one occurrence of
// an exercise inside a specific round repetition.
type Step struct {
	Exercise
	OriginalIndex    int  `json:"indiceOriginal"`
	IsRound          bool `json:"esRonda"`
	RoundIndex       int  `json:"rondaIdx"`
	Repetition       int  `json:"repeticion"`
	TotalRepetitions int  `json:"totalRepeticiones"`
}

// OrphanRef records a round exercise reference that did not resolve to any
// pool entry. Orphans are surfaced as data-integrity warnings, never errors.
type OrphanRef struct {
	RoundIndex int    `json:"rondaIdx"`
	RoundID    string `json:"rondaId,omitempty"`
	Code       string `json:"code"`
}

// Sequence is the result of flattening a session.
type Sequence struct {
	Steps   []Step      `json:"steps"`
	Orphans []OrphanRef `json:"orphans,omitempty"`
}

// Flatten expands a session into its execution order: standalone exercises
// first, in pool order, then each round in declaration order with its
// repetitions emitted consecutively. An exercise referenced by any round never
// appears as a standalone step, no matter how many rounds reference it.
// Rounds with zero or negative repetitions contribute nothing. Unresolvable
// codes are skipped and reported as orphans. Flatten is deterministic: the
// Shuffled flag is carried on the round, not applied here.
func Flatten(s *Session) (*Sequence, error) {
	if s == nil {
		return nil, ErrNilSession
	}

	inRounds := make(map[string]bool)
	for _, r := range s.Rounds {
		for _, code := range r.Exercises {
			inRounds[code] = true
		}
	}

	seq := &Sequence{}
	for i, e := range s.Exercises {
		if inRounds[e.Code] {
			continue
		}
		seq.Steps = append(seq.Steps, Step{
			Exercise:      e,
			OriginalIndex: i,
		})
	}

	pool := ExercisesByCode(s)
	for ri, r := range s.Rounds {
		// Report each orphan once per round, not once per repetition.
		for _, code := range r.Exercises {
			if _, ok := pool[code]; !ok {
				seq.Orphans = append(seq.Orphans, OrphanRef{RoundIndex: ri, RoundID: r.ID, Code: code})
			}
		}
		for rep := 1; rep <= r.Repetitions; rep++ {
			for _, code := range r.Exercises {
				e, ok := pool[code]
				if !ok {
					continue
				}
				seq.Steps = append(seq.Steps, Step{
					Exercise:         e,
					IsRound:          true,
					RoundIndex:       ri,
					Repetition:       rep,
					TotalRepetitions: r.Repetitions,
				})
			}
		}
	}

	return seq, nil
}

// PlayOrder returns the code order the player should use for one pass of a
// round: declared order, or a fresh shuffle when the round is marked Shuffled.
// The result is a copy; the round itself is never reordered or persisted.
func PlayOrder(r Round) []string {
	out := make([]string, len(r.Exercises))
	copy(out, r.Exercises)
	if r.Shuffled {
		rand.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	return out
}
