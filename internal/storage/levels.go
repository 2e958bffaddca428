package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/woodshedhq/woodshed/internal/level"
	"github.com/woodshedhq/woodshed/internal/models"
)

// GetLevelConfig returns the exit requirements for a level, or nil when the
// level has no configured gate.
func (db *DB) GetLevelConfig(ctx context.Context, lvl int) (*level.Config, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT level, min_xp_flex, min_xp_motor, min_xp_art, evidence_window_days
		 FROM level_configs WHERE level = $1`, lvl)

	var c level.Config
	err := row.Scan(&c.Level, &c.MinXPFlex, &c.MinXPMotor, &c.MinXPArt, &c.EvidenceWindowDays)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying level config: %w", err)
	}
	return &c, nil
}

// ListCriteria returns the key criteria attached to a level.
func (db *DB) ListCriteria(ctx context.Context, lvl int) ([]level.Criterion, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, level, description, source, required
		 FROM level_criteria WHERE level = $1 ORDER BY id`, lvl)
	if err != nil {
		return nil, fmt.Errorf("querying level criteria: %w", err)
	}
	defer rows.Close()

	var result []level.Criterion
	for rows.Next() {
		var c level.Criterion
		if err := rows.Scan(&c.ID, &c.Level, &c.Description, &c.Source, &c.Required); err != nil {
			return nil, fmt.Errorf("scanning criterion: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// ListCriteriaOverrides returns the teacher verdicts recorded for a student.
func (db *DB) ListCriteriaOverrides(ctx context.Context, studentID string) ([]level.Override, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT criterion_id, status
		 FROM criteria_overrides WHERE student_id = $1`, studentID)
	if err != nil {
		return nil, fmt.Errorf("querying criteria overrides: %w", err)
	}
	defer rows.Close()

	var result []level.Override
	for rows.Next() {
		var o level.Override
		if err := rows.Scan(&o.CriterionID, &o.Status); err != nil {
			return nil, fmt.Errorf("scanning override: %w", err)
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

// PromoteStudent updates the student's level and logs the change in one
// transaction so history never disagrees with the profile.
func (db *DB) PromoteStudent(ctx context.Context, studentID string, toLevel int, changedBy, reason string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning promotion tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var fromLevel int
	err = tx.QueryRow(ctx,
		`SELECT level FROM profiles WHERE id = $1 FOR UPDATE`, studentID).Scan(&fromLevel)
	if err != nil {
		return fmt.Errorf("reading current level: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE profiles SET level = $2 WHERE id = $1`, studentID, toLevel); err != nil {
		return fmt.Errorf("updating student level: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO level_history (id, student_id, from_level, to_level, changed_by, reason)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.New(), studentID, fromLevel, toLevel, changedBy, reason)
	if err != nil {
		return fmt.Errorf("inserting level history: %w", err)
	}

	return tx.Commit(ctx)
}

// ListLevelHistory returns a student's promotions, newest first.
func (db *DB) ListLevelHistory(ctx context.Context, studentID string) ([]models.LevelHistoryRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, student_id, from_level, to_level, changed_at, changed_by, reason
		 FROM level_history WHERE student_id = $1 ORDER BY changed_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("querying level history: %w", err)
	}
	defer rows.Close()

	var result []models.LevelHistoryRow
	for rows.Next() {
		var h models.LevelHistoryRow
		if err := rows.Scan(&h.ID, &h.StudentID, &h.FromLevel, &h.ToLevel, &h.ChangedAt, &h.ChangedBy, &h.Reason); err != nil {
			return nil, fmt.Errorf("scanning level history: %w", err)
		}
		result = append(result, h)
	}
	return result, rows.Err()
}
