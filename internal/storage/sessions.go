package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/woodshedhq/woodshed/internal/models"
)

// InsertSession stores an assigned session. Returns true if inserted, false
// when the id already exists.
func (db *DB) InsertSession(ctx context.Context, row models.SessionRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO sessions (id, student_id, teacher_id, day, week_start, focus, definition)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.StudentID, row.TeacherID, row.Day, row.WeekStart, row.Focus, row.Definition)
	if err != nil {
		return false, fmt.Errorf("inserting session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetSession retrieves one session by id.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*models.SessionRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, student_id, teacher_id, day, week_start, focus, definition, created_at
		 FROM sessions WHERE id = $1`, id)

	var s models.SessionRow
	if err := row.Scan(&s.ID, &s.StudentID, &s.TeacherID, &s.Day, &s.WeekStart,
		&s.Focus, &s.Definition, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &s, nil
}

// QuerySessions retrieves a student's sessions in a day range, oldest first.
func (db *DB) QuerySessions(ctx context.Context, studentID string, start, end time.Time) ([]models.SessionRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, student_id, teacher_id, day, week_start, focus, definition, created_at
		 FROM sessions
		 WHERE student_id = $1 AND day >= $2 AND day < $3
		 ORDER BY day ASC`,
		studentID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionRow
	for rows.Next() {
		var s models.SessionRow
		if err := rows.Scan(&s.ID, &s.StudentID, &s.TeacherID, &s.Day, &s.WeekStart,
			&s.Focus, &s.Definition, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
