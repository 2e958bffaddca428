// Package models holds the row types passed between storage and its callers.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionRow is a row of the sessions table. Definition is the JSONB session
// body (exercise pool, rounds, focus) in the shape internal/session decodes.
type SessionRow struct {
	ID         uuid.UUID       `json:"id"`
	StudentID  string          `json:"student_id"`
	TeacherID  string          `json:"teacher_id"`
	Day        time.Time       `json:"day"`
	WeekStart  time.Time       `json:"week_start"`
	Focus      string          `json:"focus"`
	Definition json.RawMessage `json:"definition"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PracticeRecordRow is a finished practice session as recorded by the player.
type PracticeRecordRow struct {
	ID              uuid.UUID `json:"id"`
	SessionID       uuid.UUID `json:"session_id"`
	StudentID       string    `json:"student_id"`
	StartedAt       time.Time `json:"started_at"`
	DurationSec     int       `json:"duration_sec"`
	BlocksCompleted int       `json:"blocks_completed"`
	BlocksSkipped   int       `json:"blocks_skipped"`
	Rating          *float64  `json:"rating,omitempty"`
}

// BlockRecordRow is one practiced block inside a recorded session.
type BlockRecordRow struct {
	ID          uuid.UUID  `json:"id"`
	RecordID    uuid.UUID  `json:"record_id"`
	StudentID   string     `json:"student_id"`
	Code        string     `json:"code"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	TargetBPM   int        `json:"target_bpm"`
	AchievedBPM int        `json:"achieved_bpm"`
}

// XPTotalRow is the accumulated XP of one student in one skill.
type XPTotalRow struct {
	StudentID    string    `json:"student_id"`
	Skill        string    `json:"skill"`
	TotalXP      float64   `json:"total_xp"`
	PracticeXP   float64   `json:"practice_xp"`
	EvaluationXP float64   `json:"evaluation_xp"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LevelHistoryRow records one promotion.
type LevelHistoryRow struct {
	ID        uuid.UUID `json:"id"`
	StudentID string    `json:"student_id"`
	FromLevel int       `json:"from_level"`
	ToLevel   int       `json:"to_level"`
	ChangedAt time.Time `json:"changed_at"`
	ChangedBy string    `json:"changed_by"`
	Reason    string    `json:"reason"`
}

// ProfileRow is a user profile. Level is the student's technical level; it is
// zero for teachers and admins.
type ProfileRow struct {
	ID          string     `json:"id"`
	Login       string     `json:"login"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	Level       int        `json:"level"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`
}
