package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/woodshedhq/woodshed/internal/level"
	"github.com/woodshedhq/woodshed/internal/progress"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.ParseInLocation("2006-01-02", s, time.Local)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List a student's assigned practice sessions in a date range. Returns session rows including day, focus, and the raw definition."),
	mcp.WithString("student", mcp.Required(), mcp.Description("Student ID")),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetSessionSequence = mcp.NewTool("get_session_sequence",
	mcp.WithDescription("Flatten a session definition into its playable step list: standalone exercises first, then each round expanded per repetition. Also returns the timed duration in seconds and any round references to missing exercises."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolGetPracticeSeries = mcp.NewTool("get_practice_series",
	mcp.WithDescription("Zero-filled, bucketed practice time series for a student: practice seconds, session counts, completed/skipped blocks, and average satisfaction per bucket. Bucket granularity follows the range length unless forced."),
	mcp.WithString("student", mcp.Required(), mcp.Description("Student ID")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Force a bucket granularity instead of choosing by range length."), mcp.Enum("dia", "semana", "quincena", "mes")),
)

var toolGetStudentXP = mcp.NewTool("get_student_xp",
	mcp.WithDescription("Per-skill XP for a student: recent XP recomputed from completed blocks inside the evidence window, plus lifetime accumulated totals."),
	mcp.WithString("student", mcp.Required(), mcp.Description("Student ID")),
	mcp.WithNumber("window", mcp.Description("Evidence window in days. Defaults to 30.")),
)

var toolCheckPromotion = mcp.NewTool("check_promotion",
	mcp.WithDescription("Evaluate whether a student may exit their current level. Returns the verdict, per-skill XP against minimums, criterion statuses, and a display-ready list of shortfalls."),
	mcp.WithString("student", mcp.Required(), mcp.Description("Student ID")),
)

var toolGetStudentStats = mcp.NewTool("get_student_stats",
	mcp.WithDescription("Aggregate practice statistics for a student: session, record, and block counts, total practice seconds, record date range, and block counts by status."),
	mcp.WithString("student", mcp.Required(), mcp.Description("Student ID")),
)

// --- Tool handlers ---

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	student, err := req.RequireString("student")
	if err != nil {
		return mcp.NewToolResultError("student parameter is required"), nil
	}

	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	rows, err := h.ds.ListSessions(ctx, student, start, end)
	if err != nil {
		h.log.Error("mcp list_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return toolJSON(rows)
}

func (h *handlers) getSessionSequence(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid session_id: " + err.Error()), nil
	}

	seq, err := h.ds.GetSessionSequence(ctx, id)
	if err != nil {
		h.log.Error("mcp get_session_sequence", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return toolJSON(seq)
}

func (h *handlers) getPracticeSeries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	student, err := req.RequireString("student")
	if err != nil {
		return mcp.NewToolResultError("student parameter is required"), nil
	}

	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	bucket := progress.Mode(req.GetString("bucket", ""))
	series, err := h.ds.GetPracticeSeries(ctx, student, start, end, bucket)
	if err != nil {
		h.log.Error("mcp get_practice_series", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return toolJSON(series)
}

func (h *handlers) getStudentXP(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	student, err := req.RequireString("student")
	if err != nil {
		return mcp.NewToolResultError("student parameter is required"), nil
	}

	window := req.GetInt("window", level.DefaultWindowDays)
	report, err := h.ds.GetStudentXP(ctx, student, window)
	if err != nil {
		h.log.Error("mcp get_student_xp", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return toolJSON(report)
}

func (h *handlers) checkPromotion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	student, err := req.RequireString("student")
	if err != nil {
		return mcp.NewToolResultError("student parameter is required"), nil
	}

	check, err := h.ds.CheckPromotion(ctx, student)
	if err != nil {
		h.log.Error("mcp check_promotion", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return toolJSON(check)
}

func (h *handlers) getStudentStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	student, err := req.RequireString("student")
	if err != nil {
		return mcp.NewToolResultError("student parameter is required"), nil
	}

	stats, err := h.ds.GetStudentStats(ctx, student)
	if err != nil {
		h.log.Error("mcp get_student_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return toolJSON(stats)
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
