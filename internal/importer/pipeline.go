// Package importer runs the CSV/JSON import pipeline used to migrate content
// from teacher-exported files: parse → validate → resolve references → diff
// against existing data. Run produces a review report; nothing is written
// until the caller applies it.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Resolution is the outcome of resolving one reference field. Resolved holds
// the ids the raw value mapped to; Missing lists the parts that matched
// nothing.
type Resolution struct {
	Resolved []string `json:"resolved"`
	Missing  []string `json:"missing,omitempty"`
}

// Resolver maps a raw reference value (e.g. a comma-separated list of
// exercise codes) to existing ids.
type Resolver func(ctx context.Context, raw string) (Resolution, error)

// Dataset describes how to import one entity kind.
type Dataset struct {
	Name string
	// UpsertKey is the column matched case-insensitively against existing
	// rows to decide create vs update. Empty means always create.
	UpsertKey string
	// Required columns; a row missing any of them is an error row.
	Required []string
	// Resolvers by column name, for columns referencing other datasets.
	Resolvers map[string]Resolver
}

// RowReport is the pipeline verdict for a single input row.
type RowReport struct {
	Index      int               `json:"index"`
	Data       map[string]any    `json:"data"`
	Errors     []string          `json:"errors,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
	Status     string            `json:"status"` // valid, warning, error
	Action     string            `json:"action"` // create, update
	ExistingID string            `json:"existingId,omitempty"`
	References map[string]string `json:"references,omitempty"` // column -> resolved, partial
}

// Summary aggregates the report counts.
type Summary struct {
	Total    int `json:"total"`
	Valid    int `json:"valid"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Created  int `json:"created"`
	Updated  int `json:"updated"`
}

// Report is the full pipeline output for one file.
type Report struct {
	Dataset string      `json:"dataset"`
	Rows    []RowReport `json:"rows"`
	Summary Summary     `json:"summary"`
}

// Existing maps a lowercased upsert-key value to the id of the stored row.
type Existing map[string]string

// Run executes the pipeline over one input file. Format is "csv" or "json"
// (a JSON array of objects). Reference misses are warnings, not errors: the
// row still imports and the gap is surfaced for review, mirroring the
// orphan-tolerance of the session sequencer.
func Run(ctx context.Context, ds Dataset, r io.Reader, format string, existing Existing) (*Report, error) {
	rows, err := parse(r, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s input: %w", ds.Name, err)
	}

	report := &Report{Dataset: ds.Name}
	report.Summary.Total = len(rows)

	for i, row := range rows {
		rr := RowReport{
			Index:      i,
			Data:       row,
			Status:     "valid",
			Action:     "create",
			References: map[string]string{},
		}

		for _, col := range ds.Required {
			if stringValue(row[col]) == "" {
				rr.Errors = append(rr.Errors, fmt.Sprintf("campo obligatorio %q faltante", col))
			}
		}

		if key := stringValue(row[ds.UpsertKey]); ds.UpsertKey != "" && key != "" {
			if id, ok := existing[strings.ToLower(key)]; ok {
				rr.Action = "update"
				rr.ExistingID = id
			}
		}

		for col, resolve := range ds.Resolvers {
			raw := stringValue(row[col])
			if raw == "" {
				continue
			}
			res, err := resolve(ctx, raw)
			if err != nil {
				rr.Errors = append(rr.Errors, fmt.Sprintf("error resolviendo %q: %v", col, err))
				continue
			}
			rr.Data[col] = res
			if len(res.Missing) > 0 {
				rr.Warnings = append(rr.Warnings, fmt.Sprintf("referencias no encontradas en %q: %s", col, strings.Join(res.Missing, ", ")))
				rr.References[col] = "partial"
			} else {
				rr.References[col] = "resolved"
			}
		}

		switch {
		case len(rr.Errors) > 0:
			rr.Status = "error"
			report.Summary.Errors++
		case len(rr.Warnings) > 0:
			rr.Status = "warning"
			report.Summary.Warnings++
		}
		if rr.Status != "error" {
			report.Summary.Valid++
			if rr.Action == "update" {
				report.Summary.Updated++
			} else {
				report.Summary.Created++
			}
		}

		report.Rows = append(report.Rows, rr)
	}

	return report, nil
}

func parse(r io.Reader, format string) ([]map[string]any, error) {
	switch format {
	case "csv":
		return parseCSV(r)
	case "json":
		var rows []map[string]any
		dec := json.NewDecoder(r)
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("expected a JSON array of objects: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// ListResolver builds a Resolver for comma-separated reference lists against
// a known set of code → id mappings.
func ListResolver(known map[string]string) Resolver {
	return func(_ context.Context, raw string) (Resolution, error) {
		var res Resolution
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if id, ok := known[strings.ToLower(part)]; ok {
				res.Resolved = append(res.Resolved, id)
			} else {
				res.Missing = append(res.Missing, part)
			}
		}
		return res, nil
	}
}
