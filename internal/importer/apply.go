package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/woodshedhq/woodshed/internal/dateutil"
	"github.com/woodshedhq/woodshed/internal/models"
	"github.com/woodshedhq/woodshed/internal/session"
	"github.com/woodshedhq/woodshed/internal/storage"
)

// ApplyStats counts what an apply pass actually wrote.
type ApplyStats struct {
	Inserted int
	Skipped  int
	Failed   int
}

// ApplySessions writes the create rows of a sessions report to storage.
// Error rows are skipped. Each session body is decoded, gets stable round ids
// assigned, and is re-encoded before insert so stored definitions are always
// addressable by the editor. Rows whose body does not decode are counted as
// failures and logged, never fatal — one bad row must not abort a migration.
func ApplySessions(ctx context.Context, db *storage.DB, report *Report, log *slog.Logger) (ApplyStats, error) {
	var stats ApplyStats

	for _, rr := range report.Rows {
		if rr.Status == "error" {
			stats.Skipped++
			continue
		}

		row, err := sessionRowFromReport(rr)
		if err != nil {
			log.Warn("skipping session row", "index", rr.Index, "error", err)
			stats.Failed++
			continue
		}

		inserted, err := db.InsertSession(ctx, *row)
		if err != nil {
			return stats, fmt.Errorf("inserting session row %d: %w", rr.Index, err)
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Skipped++
		}
	}

	return stats, nil
}

func sessionRowFromReport(rr RowReport) (*models.SessionRow, error) {
	day, err := dateutil.ParseLocalDate(stringValue(rr.Data["day"]))
	if err != nil {
		return nil, fmt.Errorf("invalid day: %w", err)
	}

	defRaw := stringValue(rr.Data["definition"])
	var def session.Session
	if err := json.Unmarshal([]byte(defRaw), &def); err != nil {
		return nil, fmt.Errorf("invalid session definition: %w", err)
	}

	patched, err := json.Marshal(session.EnsureRoundIDs(&def))
	if err != nil {
		return nil, fmt.Errorf("encoding session definition: %w", err)
	}

	id := uuid.New()
	if rr.ExistingID != "" {
		if parsed, err := uuid.Parse(rr.ExistingID); err == nil {
			id = parsed
		}
	}

	return &models.SessionRow{
		ID:         id,
		StudentID:  resolvedValue(rr.Data["student_id"]),
		TeacherID:  stringValue(rr.Data["teacher_id"]),
		Day:        day,
		WeekStart:  dateutil.StartOfMonday(day),
		Focus:      stringValue(rr.Data["foco"]),
		Definition: patched,
	}, nil
}

// resolvedValue unwraps a column the pipeline already resolved, falling back
// to the raw cell value for unresolved columns.
func resolvedValue(v any) string {
	if res, ok := v.(Resolution); ok {
		if len(res.Resolved) > 0 {
			return res.Resolved[0]
		}
		return ""
	}
	return stringValue(v)
}

// SessionsDataset is the import descriptor for assigned sessions.
func SessionsDataset(existingStudents map[string]string) Dataset {
	return Dataset{
		Name:      "sessions",
		UpsertKey: "id",
		Required:  []string{"student_id", "day", "definition"},
		Resolvers: map[string]Resolver{
			"student_id": ListResolver(existingStudents),
		},
	}
}
