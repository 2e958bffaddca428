// Package xp scores practiced blocks into per-skill experience points. Skill
// names are the wire values the frontend and database already use.
package xp

import "time"

// Skill identifies one of the three tracked technique skills.
type Skill string

const (
	SkillMotor        Skill = "motricidad"
	SkillArticulation Skill = "articulacion"
	SkillFlexibility  Skill = "flexibilidad"
)

// StatusCompleted is the block state that earns XP.
const StatusCompleted = "completado"

// Block is one practiced block record with its tempo outcome. TargetBPM and
// AchievedBPM are zero when the block carried no tempo goal.
type Block struct {
	StudentID   string
	Status      string
	CompletedAt time.Time
	TargetBPM   int
	AchievedBPM int
}

// Totals holds XP per skill.
type Totals struct {
	Motor        float64 `json:"motricidad"`
	Articulation float64 `json:"articulacion"`
	Flexibility  float64 `json:"flexibilidad"`
}

// BlockXP scores a single block by how close the achieved tempo came to the
// target: meeting it earns the full 100, with stepped partial credit down to
// 20 for any attempt. Blocks without tempo data earn nothing.
func BlockXP(b Block) int {
	if b.TargetBPM <= 0 || b.AchievedBPM <= 0 {
		return 0
	}
	ratio := float64(b.AchievedBPM) / float64(b.TargetBPM)
	switch {
	case ratio >= 1.0:
		return 100
	case ratio >= 0.9:
		return 80
	case ratio >= 0.75:
		return 60
	case ratio >= 0.5:
		return 40
	default:
		return 20
	}
}

// RecentXP sums XP from the student's completed blocks inside the evidence
// window ending at now. Block XP is split evenly across the three skills; a
// per-block-type weighting may replace the even split once block categories
// carry skill tags. The clock is an explicit parameter so callers (and tests)
// control the window edge.
func RecentXP(blocks []Block, studentID string, windowDays int, now time.Time) Totals {
	cutoff := now.AddDate(0, 0, -windowDays)

	var t Totals
	for _, b := range blocks {
		if b.StudentID != studentID || b.Status != StatusCompleted {
			continue
		}
		if b.CompletedAt.IsZero() || b.CompletedAt.Before(cutoff) {
			continue
		}
		share := float64(BlockXP(b)) / 3
		t.Motor += share
		t.Articulation += share
		t.Flexibility += share
	}
	return t
}

// Get returns the total for one skill; unknown skills return 0.
func (t Totals) Get(s Skill) float64 {
	switch s {
	case SkillMotor:
		return t.Motor
	case SkillArticulation:
		return t.Articulation
	case SkillFlexibility:
		return t.Flexibility
	}
	return 0
}
