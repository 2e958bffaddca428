package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/woodshedhq/woodshed/internal/dateutil"
	"github.com/woodshedhq/woodshed/internal/importer"
	"github.com/woodshedhq/woodshed/internal/level"
	"github.com/woodshedhq/woodshed/internal/models"
	"github.com/woodshedhq/woodshed/internal/progress"
	"github.com/woodshedhq/woodshed/internal/session"
	"github.com/woodshedhq/woodshed/internal/xp"
)

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student")
	if studentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "student parameter required"})
		return
	}

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := s.db.QuerySessions(r.Context(), studentID, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	row, ok := s.sessionFromURL(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleSessionSequence returns the flattened execution list for a session
// plus its timed duration and any orphan round references found on the way.
func (s *Server) handleSessionSequence(w http.ResponseWriter, r *http.Request) {
	row, ok := s.sessionFromURL(w, r)
	if !ok {
		return
	}

	var def session.Session
	if err := json.Unmarshal(row.Definition, &def); err != nil {
		s.log.Error("corrupt session definition", "session", row.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "corrupt session definition"})
		return
	}

	seq, err := session.Flatten(&def)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(seq.Orphans) > 0 {
		s.log.Warn("session has orphan round references", "session", row.ID, "orphans", len(seq.Orphans))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"steps":        seq.Steps,
		"orphans":      seq.Orphans,
		"duration_sec": session.Duration(&def),
	})
}

type createSessionRequest struct {
	StudentID  string          `json:"student_id"`
	TeacherID  string          `json:"teacher_id"`
	Day        string          `json:"day"`
	Definition session.Session `json:"definition"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.StudentID == "" || req.Day == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "student_id and day are required"})
		return
	}

	day, err := dateutil.ParseLocalDate(req.Day)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day, expected YYYY-MM-DD"})
		return
	}

	// Assign round ids before persisting so the stored definition is stable.
	def := session.EnsureRoundIDs(&req.Definition)
	raw, err := json.Marshal(def)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	row := models.SessionRow{
		ID:         uuid.New(),
		StudentID:  req.StudentID,
		TeacherID:  req.TeacherID,
		Day:        day,
		WeekStart:  dateutil.StartOfMonday(day),
		Focus:      def.Focus,
		Definition: raw,
	}
	if _, err := s.db.InsertSession(r.Context(), row); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": row.ID.String()})
}

type createRecordRequest struct {
	SessionID       uuid.UUID `json:"session_id"`
	StudentID       string    `json:"student_id"`
	StartedAt       time.Time `json:"started_at"`
	DurationSec     int       `json:"duration_sec"`
	BlocksCompleted int       `json:"blocks_completed"`
	BlocksSkipped   int       `json:"blocks_skipped"`
	Rating          *float64  `json:"rating"`
	Blocks          []struct {
		Code        string     `json:"code"`
		Status      string     `json:"status"`
		CompletedAt *time.Time `json:"completed_at"`
		TargetBPM   int        `json:"target_bpm"`
		AchievedBPM int        `json:"achieved_bpm"`
	} `json:"blocks"`
}

// handleCreateRecord stores a finished practice session with its blocks and
// credits the earned practice XP.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.StudentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "student_id is required"})
		return
	}

	record := models.PracticeRecordRow{
		ID:              uuid.New(),
		SessionID:       req.SessionID,
		StudentID:       req.StudentID,
		StartedAt:       req.StartedAt,
		DurationSec:     req.DurationSec,
		BlocksCompleted: req.BlocksCompleted,
		BlocksSkipped:   req.BlocksSkipped,
		Rating:          req.Rating,
	}
	if _, err := s.db.InsertPracticeRecord(r.Context(), record); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	blocks := make([]models.BlockRecordRow, 0, len(req.Blocks))
	var earned float64
	for _, b := range req.Blocks {
		blocks = append(blocks, models.BlockRecordRow{
			ID:          uuid.New(),
			RecordID:    record.ID,
			StudentID:   req.StudentID,
			Code:        b.Code,
			Status:      b.Status,
			CompletedAt: b.CompletedAt,
			TargetBPM:   b.TargetBPM,
			AchievedBPM: b.AchievedBPM,
		})
		if b.Status == xp.StatusCompleted {
			earned += float64(xp.BlockXP(xp.Block{
				StudentID:   req.StudentID,
				Status:      b.Status,
				TargetBPM:   b.TargetBPM,
				AchievedBPM: b.AchievedBPM,
			}))
		}
	}
	if _, err := s.db.InsertBlockRecords(r.Context(), blocks); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Practice XP is split evenly across the three skills.
	if earned > 0 {
		share := earned / 3
		for _, skill := range []xp.Skill{xp.SkillMotor, xp.SkillArticulation, xp.SkillFlexibility} {
			if err := s.db.AddPracticeXP(r.Context(), req.StudentID, string(skill), share); err != nil {
				s.log.Error("crediting practice xp", "student", req.StudentID, "skill", skill, "error", err)
			}
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": record.ID.String(), "blocks": len(blocks)})
}

// handleProgressSeries returns a zero-filled, bucketed practice time series.
// Bucket granularity follows the range length unless forced with ?bucket=.
func (s *Server) handleProgressSeries(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student")
	if studentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "student parameter required"})
		return
	}

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := s.db.QueryPracticeRecords(r.Context(), studentID, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
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

	mode := progress.ChooseBucket(start, end)
	if q := r.URL.Query().Get("bucket"); q != "" {
		mode = progress.Mode(q)
	}

	daily := progress.DailySeries(records, start, end)
	writeJSON(w, http.StatusOK, map[string]any{
		"bucket": mode,
		"series": progress.Aggregate(daily, mode),
	})
}

func (s *Server) handleStudentXP(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	recent, err := s.recentXP(r, studentID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	lifetime, err := s.db.GetXPTotals(r.Context(), studentID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recent":   recent,
		"lifetime": lifetime,
	})
}

func (s *Server) handleCheckPromotion(w http.ResponseWriter, r *http.Request) {
	check, _, err := s.promotionCheck(r, chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, check)
}

type promoteRequest struct {
	Reason    string `json:"reason"`
	ChangedBy string `json:"changed_by"`
}

// handlePromote executes a promotion after re-running the eligibility check.
func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	check, profile, err := s.promotionCheck(r, studentID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !check.Allowed {
		writeJSON(w, http.StatusConflict, check)
		return
	}

	toLevel := profile.Level + 1
	if err := s.db.PromoteStudent(r.Context(), studentID, toLevel, req.ChangedBy, req.Reason); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"student_id": studentID, "level": toLevel})
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.ListProfiles(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type upsertProfileRequest struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// handleUpsertProfile finds or creates a profile by login.
func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req upsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Login == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "login is required"})
		return
	}
	if req.Role == "" {
		req.Role = "student"
	}

	profile, err := s.db.GetOrCreateProfile(r.Context(), req.Login, req.DisplayName, req.Role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleLevelHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.db.ListLevelHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleStudentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStudentStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleImport runs the import pipeline over an uploaded file and returns the
// review report. With ?apply=true, valid rows are also written.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")
	if dataset != "sessions" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown dataset: " + dataset})
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	students, err := s.db.ListProfiles(r.Context(), "")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	known := make(map[string]string, len(students))
	for _, p := range students {
		known[strings.ToLower(p.Login)] = p.ID
		known[strings.ToLower(p.ID)] = p.ID
	}

	report, err := importer.Run(r.Context(), importer.SessionsDataset(known), r.Body, format, nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]any{"report": report}
	if r.URL.Query().Get("apply") == "true" {
		stats, err := importer.ApplySessions(r.Context(), s.db, report, s.log)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp["applied"] = stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- helpers ---

func (s *Server) sessionFromURL(w http.ResponseWriter, r *http.Request) (*models.SessionRow, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return nil, false
	}
	row, err := s.db.GetSession(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return row, true
}

// recentXP recomputes windowed XP from block records. The window defaults to
// 30 days; override with ?window=N.
func (s *Server) recentXP(r *http.Request, studentID string) (xp.Totals, error) {
	window := level.DefaultWindowDays
	if q := r.URL.Query().Get("window"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			window = n
		}
	}

	now := time.Now()
	rows, err := s.db.QueryBlockRecords(r.Context(), studentID, now.AddDate(0, 0, -window))
	if err != nil {
		return xp.Totals{}, err
	}
	return xp.RecentXP(blocksFromRows(rows), studentID, window, now), nil
}

func (s *Server) promotionCheck(r *http.Request, studentID string) (*level.Check, *models.ProfileRow, error) {
	ctx := r.Context()

	profile, err := s.db.GetProfile(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := s.db.GetLevelConfig(ctx, profile.Level)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	rows, err := s.db.QueryBlockRecords(ctx, studentID, now.AddDate(0, 0, -cfg.Window()))
	if err != nil {
		return nil, nil, err
	}
	totals := xp.RecentXP(blocksFromRows(rows), studentID, cfg.Window(), now)

	criteria, err := s.db.ListCriteria(ctx, profile.Level)
	if err != nil {
		return nil, nil, err
	}
	overrides, err := s.db.ListCriteriaOverrides(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}

	check := level.CheckPromotion(cfg, totals, level.EvaluateCriteria(criteria, overrides))
	return &check, profile, nil
}

func blocksFromRows(rows []models.BlockRecordRow) []xp.Block {
	blocks := make([]xp.Block, 0, len(rows))
	for _, b := range rows {
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.ParseInLocation("2006-01-02", startStr, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.ParseInLocation("2006-01-02", endStr, time.Local)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
