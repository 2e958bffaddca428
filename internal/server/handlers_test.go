package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	// Handlers under test here reject the request before touching storage.
	return New(nil, "secret", log)
}

// TestQuerySessionsRequiresStudent verifies the student parameter is mandatory.
func TestQuerySessionsRequiresStudent(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestGetSessionInvalidID verifies non-UUID session ids are rejected.
func TestGetSessionInvalidID(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestWriteEndpointsRequireKey verifies every write route sits behind the API
// key middleware.
func TestWriteEndpointsRequireKey(t *testing.T) {
	srv := testServer(t)
	paths := []string{
		"/api/v1/students",
		"/api/v1/sessions",
		"/api/v1/records",
		"/api/v1/students/stu-1/promotion",
		"/api/v1/import/sessions",
	}
	for _, p := range paths {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, p, strings.NewReader("{}")))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("POST %s without key: status = %d, want 401", p, rec.Code)
		}
	}
}

// TestCreateSessionRejectsBadBody verifies malformed JSON and missing required
// fields fail with 400 before any storage access.
func TestCreateSessionRejectsBadBody(t *testing.T) {
	srv := testServer(t)
	cases := []struct {
		name string
		body string
	}{
		{"malformed", "{not json"},
		{"missing student", `{"day":"2026-03-02","definition":{}}`},
		{"bad day", `{"student_id":"stu-1","day":"03/02/2026","definition":{}}`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(tc.body))
		req.Header.Set("X-API-Key", "secret")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, rec.Code)
		}
	}
}

// TestUpsertProfileRequiresLogin verifies the login field is mandatory.
func TestUpsertProfileRequiresLogin(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", strings.NewReader(`{"display_name":"Pepe"}`))
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestImportUnknownDataset verifies unknown dataset names are rejected.
func TestImportUnknownDataset(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/workouts", strings.NewReader(""))
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestParseTimeRange verifies both accepted formats, the 30-day default, and
// the end-of-day extension for date-only end values.
func TestParseTimeRange(t *testing.T) {
	// Defaults when start is absent.
	req := httptest.NewRequest(http.MethodGet, "/?end=ignored-without-start", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatal(err)
	}
	if d := end.Sub(start); d.Hours() < 719 || d.Hours() > 721 {
		t.Errorf("default range = %.0f hours, want ~720", d.Hours())
	}

	// Date-only values.
	req = httptest.NewRequest(http.MethodGet, "/?start=2026-03-01&end=2026-03-10", nil)
	start, end, err = parseTimeRange(req)
	if err != nil {
		t.Fatal(err)
	}
	if start.Day() != 1 {
		t.Errorf("start day = %d, want 1", start.Day())
	}
	// End extends past the named day so the whole day is included.
	if !end.After(time.Date(2026, time.March, 10, 23, 0, 0, 0, time.Local)) {
		t.Errorf("end = %v, want past 2026-03-10 23:00", end)
	}

	// RFC3339.
	req = httptest.NewRequest(http.MethodGet, "/?start=2026-03-01T08:00:00Z", nil)
	start, _, err = parseTimeRange(req)
	if err != nil {
		t.Fatal(err)
	}
	if start.Hour() != 8 {
		t.Errorf("start hour = %d, want 8", start.Hour())
	}

	// Invalid.
	req = httptest.NewRequest(http.MethodGet, "/?start=March-1", nil)
	if _, _, err := parseTimeRange(req); err == nil {
		t.Error("expected error for invalid start")
	}
}
