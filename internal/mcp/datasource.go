package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/woodshedhq/woodshed/internal/level"
	"github.com/woodshedhq/woodshed/internal/models"
	"github.com/woodshedhq/woodshed/internal/progress"
	"github.com/woodshedhq/woodshed/internal/session"
	"github.com/woodshedhq/woodshed/internal/storage"
	"github.com/woodshedhq/woodshed/internal/xp"
)

// DataSource abstracts the data layer for MCP tools. Both *Local (direct
// database access) and *HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	ListSessions(ctx context.Context, studentID string, start, end time.Time) ([]models.SessionRow, error)
	GetSessionSequence(ctx context.Context, id uuid.UUID) (*SequenceResult, error)
	GetPracticeSeries(ctx context.Context, studentID string, start, end time.Time, bucket progress.Mode) (*SeriesResult, error)
	GetStudentXP(ctx context.Context, studentID string, windowDays int) (*XPReport, error)
	CheckPromotion(ctx context.Context, studentID string) (*level.Check, error)
	GetStudentStats(ctx context.Context, studentID string) (*storage.StudentStats, error)
}

// SequenceResult is a session flattened into its playable order. The JSON
// shape matches the sequence REST endpoint so HTTPClient can decode it as-is.
type SequenceResult struct {
	Steps       []session.Step      `json:"steps"`
	Orphans     []session.OrphanRef `json:"orphans"`
	DurationSec int                 `json:"duration_sec"`
}

// SeriesResult is a bucketed practice time series together with the
// granularity it was aggregated at.
type SeriesResult struct {
	Bucket progress.Mode    `json:"bucket"`
	Series []progress.Point `json:"series"`
}

// XPReport pairs windowed XP recomputed from block records with the lifetime
// accumulated totals.
type XPReport struct {
	Recent   xp.Totals           `json:"recent"`
	Lifetime []models.XPTotalRow `json:"lifetime"`
}
