package storage

import (
	"context"
	"fmt"

	"github.com/woodshedhq/woodshed/internal/models"
)

// GetXPTotals returns the accumulated per-skill XP rows for a student.
func (db *DB) GetXPTotals(ctx context.Context, studentID string) ([]models.XPTotalRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT student_id, skill, total_xp, practice_xp, evaluation_xp, updated_at
		 FROM xp_totals WHERE student_id = $1`, studentID)
	if err != nil {
		return nil, fmt.Errorf("querying xp totals: %w", err)
	}
	defer rows.Close()

	var result []models.XPTotalRow
	for rows.Next() {
		var t models.XPTotalRow
		if err := rows.Scan(&t.StudentID, &t.Skill, &t.TotalXP, &t.PracticeXP, &t.EvaluationXP, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning xp total: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// AddPracticeXP adds earned practice XP to a student's skill total, creating
// the row on first write.
func (db *DB) AddPracticeXP(ctx context.Context, studentID, skill string, amount float64) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO xp_totals (student_id, skill, total_xp, practice_xp, evaluation_xp)
		VALUES ($1, $2, $3, $3, 0)
		ON CONFLICT (student_id, skill) DO UPDATE
			SET total_xp = xp_totals.total_xp + $3,
			    practice_xp = xp_totals.practice_xp + $3,
			    updated_at = NOW()
	`, studentID, skill, amount)
	if err != nil {
		return fmt.Errorf("adding practice xp: %w", err)
	}
	return nil
}
