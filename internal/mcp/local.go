package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/woodshedhq/woodshed/internal/level"
	"github.com/woodshedhq/woodshed/internal/models"
	"github.com/woodshedhq/woodshed/internal/progress"
	"github.com/woodshedhq/woodshed/internal/session"
	"github.com/woodshedhq/woodshed/internal/storage"
	"github.com/woodshedhq/woodshed/internal/xp"
)

// Local implements DataSource against the database directly. Used when the
// MCP server runs in the same process as the API.
type Local struct {
	db *storage.DB
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal wraps a database handle as a DataSource.
func NewLocal(db *storage.DB) *Local {
	return &Local{db: db}
}

func (l *Local) ListSessions(ctx context.Context, studentID string, start, end time.Time) ([]models.SessionRow, error) {
	return l.db.QuerySessions(ctx, studentID, start, end)
}

func (l *Local) GetSessionSequence(ctx context.Context, id uuid.UUID) (*SequenceResult, error) {
	row, err := l.db.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	var def session.Session
	if err := json.Unmarshal(row.Definition, &def); err != nil {
		return nil, fmt.Errorf("corrupt session definition: %w", err)
	}

	seq, err := session.Flatten(&def)
	if err != nil {
		return nil, err
	}
	return &SequenceResult{
		Steps:       seq.Steps,
		Orphans:     seq.Orphans,
		DurationSec: session.Duration(&def),
	}, nil
}

func (l *Local) GetPracticeSeries(ctx context.Context, studentID string, start, end time.Time, bucket progress.Mode) (*SeriesResult, error) {
	rows, err := l.db.QueryPracticeRecords(ctx, studentID, start, end)
	if err != nil {
		return nil, err
	}

	records := make([]progress.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, progress.Record{
			StartedAt:       row.StartedAt,
			DurationSec:     row.DurationSec,
			BlocksCompleted: row.BlocksCompleted,
			BlocksSkipped:   row.BlocksSkipped,
			Rating:          row.Rating,
		})
	}

	if bucket == "" {
		bucket = progress.ChooseBucket(start, end)
	}
	return &SeriesResult{
		Bucket: bucket,
		Series: progress.Aggregate(progress.DailySeries(records, start, end), bucket),
	}, nil
}

func (l *Local) GetStudentXP(ctx context.Context, studentID string, windowDays int) (*XPReport, error) {
	if windowDays <= 0 {
		windowDays = level.DefaultWindowDays
	}

	now := time.Now()
	rows, err := l.db.QueryBlockRecords(ctx, studentID, now.AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, err
	}

	lifetime, err := l.db.GetXPTotals(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &XPReport{
		Recent:   xp.RecentXP(blocksFromRows(rows, studentID), studentID, windowDays, now),
		Lifetime: lifetime,
	}, nil
}

func (l *Local) CheckPromotion(ctx context.Context, studentID string) (*level.Check, error) {
	profile, err := l.db.GetProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}

	cfg, err := l.db.GetLevelConfig(ctx, profile.Level)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rows, err := l.db.QueryBlockRecords(ctx, studentID, now.AddDate(0, 0, -cfg.Window()))
	if err != nil {
		return nil, err
	}
	totals := xp.RecentXP(blocksFromRows(rows, studentID), studentID, cfg.Window(), now)

	criteria, err := l.db.ListCriteria(ctx, profile.Level)
	if err != nil {
		return nil, err
	}
	overrides, err := l.db.ListCriteriaOverrides(ctx, studentID)
	if err != nil {
		return nil, err
	}

	check := level.CheckPromotion(cfg, totals, level.EvaluateCriteria(criteria, overrides))
	return &check, nil
}

func (l *Local) GetStudentStats(ctx context.Context, studentID string) (*storage.StudentStats, error) {
	return l.db.GetStudentStats(ctx, studentID)
}

func blocksFromRows(rows []models.BlockRecordRow, studentID string) []xp.Block {
	blocks := make([]xp.Block, 0, len(rows))
	for _, b := range rows {
		if b.StudentID != studentID {
			continue
		}
		blk := xp.Block{
			StudentID:   b.StudentID,
			Status:      b.Status,
			TargetBPM:   b.TargetBPM,
			AchievedBPM: b.AchievedBPM,
		}
		if b.CompletedAt != nil {
			blk.CompletedAt = *b.CompletedAt
		}
		blocks = append(blocks, blk)
	}
	return blocks
}
