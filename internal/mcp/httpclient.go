package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/woodshedhq/woodshed/internal/level"
	"github.com/woodshedhq/woodshed/internal/models"
	"github.com/woodshedhq/woodshed/internal/progress"
	"github.com/woodshedhq/woodshed/internal/storage"
)

// HTTPClient implements DataSource by calling the Woodshed REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func timeParams(studentID string, start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("student", studentID)
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) ListSessions(ctx context.Context, studentID string, start, end time.Time) ([]models.SessionRow, error) {
	body, err := c.get(ctx, "/api/v1/sessions", timeParams(studentID, start, end))
	if err != nil {
		return nil, err
	}

	var rows []models.SessionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) GetSessionSequence(ctx context.Context, id uuid.UUID) (*SequenceResult, error) {
	body, err := c.get(ctx, "/api/v1/sessions/"+id.String()+"/sequence", nil)
	if err != nil {
		return nil, err
	}

	var seq SequenceResult
	if err := json.Unmarshal(body, &seq); err != nil {
		return nil, fmt.Errorf("httpclient: decode sequence: %w", err)
	}
	return &seq, nil
}

func (c *HTTPClient) GetPracticeSeries(ctx context.Context, studentID string, start, end time.Time, bucket progress.Mode) (*SeriesResult, error) {
	params := timeParams(studentID, start, end)
	if bucket != "" {
		params.Set("bucket", string(bucket))
	}

	body, err := c.get(ctx, "/api/v1/progress/series", params)
	if err != nil {
		return nil, err
	}

	var series SeriesResult
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("httpclient: decode progress series: %w", err)
	}
	return &series, nil
}

func (c *HTTPClient) GetStudentXP(ctx context.Context, studentID string, windowDays int) (*XPReport, error) {
	params := url.Values{}
	if windowDays > 0 {
		params.Set("window", strconv.Itoa(windowDays))
	}

	body, err := c.get(ctx, "/api/v1/students/"+url.PathEscape(studentID)+"/xp", params)
	if err != nil {
		return nil, err
	}

	var report XPReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("httpclient: decode xp report: %w", err)
	}
	return &report, nil
}

func (c *HTTPClient) CheckPromotion(ctx context.Context, studentID string) (*level.Check, error) {
	body, err := c.get(ctx, "/api/v1/students/"+url.PathEscape(studentID)+"/promotion", nil)
	if err != nil {
		return nil, err
	}

	var check level.Check
	if err := json.Unmarshal(body, &check); err != nil {
		return nil, fmt.Errorf("httpclient: decode promotion check: %w", err)
	}
	return &check, nil
}

func (c *HTTPClient) GetStudentStats(ctx context.Context, studentID string) (*storage.StudentStats, error) {
	body, err := c.get(ctx, "/api/v1/students/"+url.PathEscape(studentID)+"/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats storage.StudentStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode student stats: %w", err)
	}
	return &stats, nil
}
