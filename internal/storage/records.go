package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/woodshedhq/woodshed/internal/models"
)

// InsertPracticeRecord inserts a finished practice session. Returns true if
// inserted, false if the id already exists.
func (db *DB) InsertPracticeRecord(ctx context.Context, row models.PracticeRecordRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO practice_records (id, session_id, student_id, started_at, duration_sec,
		 blocks_completed, blocks_skipped, rating)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.SessionID, row.StudentID, row.StartedAt, row.DurationSec,
		row.BlocksCompleted, row.BlocksSkipped, row.Rating)
	if err != nil {
		return false, fmt.Errorf("inserting practice record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertBlockRecords batch-inserts practiced blocks. Returns count inserted.
func (db *DB) InsertBlockRecords(ctx context.Context, rows []models.BlockRecordRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO block_records (id, record_id, student_id, code, status, completed_at, target_bpm, achieved_bpm) VALUES `
	args := make([]any, 0, len(rows)*8)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args, r.ID, r.RecordID, r.StudentID, r.Code, r.Status, r.CompletedAt, r.TargetBPM, r.AchievedBPM)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting block records: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryPracticeRecords retrieves a student's practice records in a time range,
// oldest first.
func (db *DB) QueryPracticeRecords(ctx context.Context, studentID string, start, end time.Time) ([]models.PracticeRecordRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, student_id, started_at, duration_sec,
		 blocks_completed, blocks_skipped, rating
		 FROM practice_records
		 WHERE student_id = $1 AND started_at >= $2 AND started_at < $3
		 ORDER BY started_at ASC`,
		studentID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying practice records: %w", err)
	}
	defer rows.Close()

	var result []models.PracticeRecordRow
	for rows.Next() {
		var r models.PracticeRecordRow
		if err := rows.Scan(&r.ID, &r.SessionID, &r.StudentID, &r.StartedAt, &r.DurationSec,
			&r.BlocksCompleted, &r.BlocksSkipped, &r.Rating); err != nil {
			return nil, fmt.Errorf("scanning practice record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// QueryBlockRecords retrieves a student's practiced blocks completed on or
// after the cutoff. Blocks without a completion time are excluded.
func (db *DB) QueryBlockRecords(ctx context.Context, studentID string, since time.Time) ([]models.BlockRecordRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, record_id, student_id, code, status, completed_at, target_bpm, achieved_bpm
		 FROM block_records
		 WHERE student_id = $1 AND completed_at IS NOT NULL AND completed_at >= $2
		 ORDER BY completed_at ASC`,
		studentID, since)
	if err != nil {
		return nil, fmt.Errorf("querying block records: %w", err)
	}
	defer rows.Close()

	var result []models.BlockRecordRow
	for rows.Next() {
		var b models.BlockRecordRow
		if err := rows.Scan(&b.ID, &b.RecordID, &b.StudentID, &b.Code, &b.Status,
			&b.CompletedAt, &b.TargetBPM, &b.AchievedBPM); err != nil {
			return nil, fmt.Errorf("scanning block record: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}
