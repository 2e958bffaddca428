package importer

import (
	"context"
	"strings"
	"testing"
)

// TestRunCSVValidRows verifies a clean CSV file parses into valid create rows.
func TestRunCSVValidRows(t *testing.T) {
	csvData := `student_id,day,definition
stu-1,2026-03-02,"{""bloques"":[]}"
stu-2,2026-03-03,"{""bloques"":[]}"
`
	ds := Dataset{Name: "sessions", Required: []string{"student_id", "day", "definition"}}

	report, err := Run(context.Background(), ds, strings.NewReader(csvData), "csv", nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary.Total != 2 || report.Summary.Valid != 2 || report.Summary.Errors != 0 {
		t.Errorf("summary = %+v, want 2 total, 2 valid", report.Summary)
	}
	for _, rr := range report.Rows {
		if rr.Status != "valid" || rr.Action != "create" {
			t.Errorf("row %d: status=%q action=%q, want valid/create", rr.Index, rr.Status, rr.Action)
		}
	}
}

// TestRunMissingRequired verifies rows missing a required column are flagged
// as errors without aborting the rest of the file.
func TestRunMissingRequired(t *testing.T) {
	csvData := `student_id,day,definition
stu-1,,{}
stu-2,2026-03-03,{}
`
	ds := Dataset{Name: "sessions", Required: []string{"student_id", "day", "definition"}}

	report, err := Run(context.Background(), ds, strings.NewReader(csvData), "csv", nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary.Errors != 1 || report.Summary.Valid != 1 {
		t.Errorf("summary = %+v, want 1 error and 1 valid", report.Summary)
	}
	if report.Rows[0].Status != "error" {
		t.Errorf("row 0 status = %q, want error", report.Rows[0].Status)
	}
	if len(report.Rows[0].Errors) == 0 || !strings.Contains(report.Rows[0].Errors[0], "day") {
		t.Errorf("row 0 errors = %v, want a missing-field message naming day", report.Rows[0].Errors)
	}
}

// TestRunUpsertMatch verifies the case-insensitive upsert-key match flips the
// action to update and carries the existing id.
func TestRunUpsertMatch(t *testing.T) {
	csvData := `id,student_id,day,definition
SES-001,stu-1,2026-03-02,{}
ses-999,stu-1,2026-03-03,{}
`
	ds := Dataset{Name: "sessions", UpsertKey: "id", Required: []string{"student_id"}}
	existing := Existing{"ses-001": "11111111-1111-1111-1111-111111111111"}

	report, err := Run(context.Background(), ds, strings.NewReader(csvData), "csv", existing)
	if err != nil {
		t.Fatal(err)
	}
	if report.Rows[0].Action != "update" || report.Rows[0].ExistingID != "11111111-1111-1111-1111-111111111111" {
		t.Errorf("row 0 = %+v, want update with existing id", report.Rows[0])
	}
	if report.Rows[1].Action != "create" {
		t.Errorf("row 1 action = %q, want create", report.Rows[1].Action)
	}
	if report.Summary.Updated != 1 || report.Summary.Created != 1 {
		t.Errorf("summary = %+v, want 1 updated, 1 created", report.Summary)
	}
}

// TestRunResolverWarnings verifies reference misses downgrade the row to a
// warning instead of an error, and resolved ids replace the raw value.
func TestRunResolverWarnings(t *testing.T) {
	csvData := `student_id,day
pepe, 2026-03-02
ghost,2026-03-03
`
	ds := Dataset{
		Name:     "sessions",
		Required: []string{"student_id"},
		Resolvers: map[string]Resolver{
			"student_id": ListResolver(map[string]string{"pepe": "id-pepe"}),
		},
	}

	report, err := Run(context.Background(), ds, strings.NewReader(csvData), "csv", nil)
	if err != nil {
		t.Fatal(err)
	}

	first := report.Rows[0]
	if first.Status != "valid" {
		t.Errorf("resolved row status = %q, want valid", first.Status)
	}
	res, ok := first.Data["student_id"].(Resolution)
	if !ok || len(res.Resolved) != 1 || res.Resolved[0] != "id-pepe" {
		t.Errorf("resolved value = %+v, want id-pepe", first.Data["student_id"])
	}

	second := report.Rows[1]
	if second.Status != "warning" {
		t.Errorf("unresolved row status = %q, want warning", second.Status)
	}
	if second.References["student_id"] != "partial" {
		t.Errorf("reference mark = %q, want partial", second.References["student_id"])
	}
	if report.Summary.Warnings != 1 {
		t.Errorf("summary warnings = %d, want 1", report.Summary.Warnings)
	}
}

// TestRunJSONInput verifies the JSON array input path.
func TestRunJSONInput(t *testing.T) {
	jsonData := `[{"student_id":"stu-1","day":"2026-03-02","definition":"{}"}]`
	ds := Dataset{Name: "sessions", Required: []string{"student_id", "day", "definition"}}

	report, err := Run(context.Background(), ds, strings.NewReader(jsonData), "json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary.Total != 1 || report.Summary.Valid != 1 {
		t.Errorf("summary = %+v, want 1 valid row", report.Summary)
	}
}

// TestRunUnsupportedFormat verifies unknown formats fail fast.
func TestRunUnsupportedFormat(t *testing.T) {
	_, err := Run(context.Background(), Dataset{Name: "sessions"}, strings.NewReader(""), "xml", nil)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

// TestParseCSVShortRows verifies short rows pad with empty strings and extra
// cells are dropped.
func TestParseCSVShortRows(t *testing.T) {
	csvData := `a,b,c
1,2
1,2,3,4
`
	rows, err := parseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["c"] != "" {
		t.Errorf("short row c = %v, want empty string", rows[0]["c"])
	}
	if len(rows[1]) != 3 {
		t.Errorf("long row kept %d cells, want 3", len(rows[1]))
	}
}

// TestListResolverCaseInsensitive verifies comma-separated lists resolve
// case-insensitively with misses reported.
func TestListResolverCaseInsensitive(t *testing.T) {
	resolve := ListResolver(map[string]string{"ej-01": "id-1", "ej-02": "id-2"})

	res, err := resolve(context.Background(), "EJ-01, ej-02 ,EJ-99")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Resolved) != 2 || res.Resolved[0] != "id-1" || res.Resolved[1] != "id-2" {
		t.Errorf("resolved = %v, want [id-1 id-2]", res.Resolved)
	}
	if len(res.Missing) != 1 || res.Missing[0] != "EJ-99" {
		t.Errorf("missing = %v, want [EJ-99]", res.Missing)
	}
}
