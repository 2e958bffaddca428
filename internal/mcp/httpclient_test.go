package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/woodshedhq/woodshed/internal/progress"
	"github.com/woodshedhq/woodshed/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestGetPracticeSeries verifies the HTTP client sends the right query params
// and correctly parses the wrapped series response.
func TestGetPracticeSeries(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/progress/series": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("student"); got != "stu-1" {
				t.Errorf("student=%q, want stu-1", got)
			}
			if got := r.URL.Query().Get("bucket"); got != "semana" {
				t.Errorf("bucket=%q, want semana", got)
			}

			writeTestJSON(t, w, SeriesResult{
				Bucket: progress.ModeWeek,
				Series: []progress.Point{
					{Date: "2026-01-05", TimeSec: 1800, Sessions: 3},
				},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	result, err := client.GetPracticeSeries(context.Background(), "stu-1", start, end, progress.ModeWeek)
	if err != nil {
		t.Fatal(err)
	}
	if result.Bucket != progress.ModeWeek {
		t.Errorf("bucket=%q, want semana", result.Bucket)
	}
	if len(result.Series) != 1 {
		t.Fatalf("got %d points, want 1", len(result.Series))
	}
	if result.Series[0].TimeSec != 1800 {
		t.Errorf("time_sec=%d, want 1800", result.Series[0].TimeSec)
	}
}

// TestGetSessionSequence verifies the sequence endpoint path and response parsing.
func TestGetSessionSequence(t *testing.T) {
	id := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions/" + id.String() + "/sequence": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, map[string]any{
				"steps":        []map[string]any{{"code": "EJ-01", "esRonda": false}},
				"orphans":      []any{},
				"duration_sec": 180,
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	seq, err := client.GetSessionSequence(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if seq.DurationSec != 180 {
		t.Errorf("duration_sec=%d, want 180", seq.DurationSec)
	}
	if len(seq.Steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(seq.Steps))
	}
	if seq.Steps[0].Code != "EJ-01" {
		t.Errorf("code=%q, want EJ-01", seq.Steps[0].Code)
	}
}

// TestGetStudentXP verifies the xp endpoint sends the window param and parses
// the recent/lifetime wrapper.
func TestGetStudentXP(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/students/stu-1/xp": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("window"); got != "60" {
				t.Errorf("window=%q, want 60", got)
			}
			writeTestJSON(t, w, map[string]any{
				"recent": map[string]float64{
					"motricidad":   100,
					"articulacion": 100,
					"flexibilidad": 100,
				},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	report, err := client.GetStudentXP(context.Background(), "stu-1", 60)
	if err != nil {
		t.Fatal(err)
	}
	if report.Recent.Motor != 100 {
		t.Errorf("motor xp=%f, want 100", report.Recent.Motor)
	}
}

// TestCheckPromotion verifies promotion check parsing including the missing list.
func TestCheckPromotion(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/students/stu-1/promotion": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, map[string]any{
				"allowed": false,
				"missing": []string{"Flexibilidad XP: 40/100"},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	check, err := client.CheckPromotion(context.Background(), "stu-1")
	if err != nil {
		t.Fatal(err)
	}
	if check.Allowed {
		t.Error("allowed=true, want false")
	}
	if len(check.Missing) != 1 {
		t.Fatalf("got %d missing entries, want 1", len(check.Missing))
	}
}

// TestGetStudentStats verifies the stats endpoint parsing.
func TestGetStudentStats(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/students/stu-1/stats": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, storage.StudentStats{
				TotalSessions:    12,
				TotalRecords:     30,
				TotalPracticeSec: 54000,
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	stats, err := client.GetStudentStats(context.Background(), "stu-1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 12 {
		t.Errorf("total_sessions=%d, want 12", stats.TotalSessions)
	}
}

// TestHTTPClientServerError verifies the client returns an error on non-200 responses.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/students/stu-1/stats": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database down"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	_, err := client.GetStudentStats(context.Background(), "stu-1")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
