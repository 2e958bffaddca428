package storage

import (
	"context"
	"fmt"
	"time"
)

// StudentStats holds aggregate statistics about one student's stored data.
type StudentStats struct {
	TotalSessions    int64           `json:"total_sessions"`
	TotalRecords     int64           `json:"total_records"`
	TotalBlocks      int64           `json:"total_blocks"`
	TotalPracticeSec int64           `json:"total_practice_sec"`
	EarliestRecord   *time.Time      `json:"earliest_record"`
	LatestRecord     *time.Time      `json:"latest_record"`
	BlocksByType     []BlockTypeStat `json:"blocks_by_type"`
}

// BlockTypeStat holds per-category block counts for one student.
type BlockTypeStat struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// GetStudentStats returns aggregate statistics for a student.
func (db *DB) GetStudentStats(ctx context.Context, studentID string) (*StudentStats, error) {
	stats := &StudentStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE student_id = $1`, studentID,
	).Scan(&stats.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration_sec), 0), MIN(started_at), MAX(started_at)
		 FROM practice_records WHERE student_id = $1`, studentID,
	).Scan(&stats.TotalRecords, &stats.TotalPracticeSec, &stats.EarliestRecord, &stats.LatestRecord)
	if err != nil {
		return nil, fmt.Errorf("counting practice records: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM block_records WHERE student_id = $1`, studentID,
	).Scan(&stats.TotalBlocks)
	if err != nil {
		return nil, fmt.Errorf("counting block records: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT status, COUNT(*)
		 FROM block_records
		 WHERE student_id = $1
		 GROUP BY status
		 ORDER BY COUNT(*) DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("querying blocks by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s BlockTypeStat
		if err := rows.Scan(&s.Status, &s.Count); err != nil {
			return nil, fmt.Errorf("scanning block stat: %w", err)
		}
		stats.BlocksByType = append(stats.BlocksByType, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
