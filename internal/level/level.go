// Package level implements the promotion criteria engine: given a level's
// exit requirements, a student's XP totals, and teacher sign-offs, decide
// whether the student may advance and report what is still missing. The
// engine is pure; loading configs and recording promotions live in storage.
package level

import (
	"fmt"

	"github.com/woodshedhq/woodshed/internal/xp"
)

// Config holds the requirements to exit a level. EvidenceWindowDays bounds
// how far back practice XP counts; zero falls back to DefaultWindowDays.
type Config struct {
	Level              int     `json:"level"`
	MinXPFlex          float64 `json:"minXpFlex"`
	MinXPMotor         float64 `json:"minXpMotr"`
	MinXPArt           float64 `json:"minXpArt"`
	EvidenceWindowDays int     `json:"evidenceWindowDays"`
}

// DefaultWindowDays is the evidence window used when a config does not set one.
const DefaultWindowDays = 30

// Window returns the effective evidence window for the config.
func (c *Config) Window() int {
	if c == nil || c.EvidenceWindowDays <= 0 {
		return DefaultWindowDays
	}
	return c.EvidenceWindowDays
}

// CriterionSource tells where a criterion's verdict comes from.
type CriterionSource string

const (
	// SourceTeacher criteria are signed off manually.
	SourceTeacher CriterionSource = "PROF"
	// SourcePractice criteria would be derived from practice records.
	// Automatic evaluation is not implemented; they stay pending until a
	// teacher overrides them.
	SourcePractice CriterionSource = "PRACTICA"
)

// Status of a criterion for a particular student.
type Status string

const (
	StatusPassed  Status = "PASSED"
	StatusFailed  Status = "FAILED"
	StatusPending Status = "PENDING"
)

// Criterion is one named requirement attached to a level.
type Criterion struct {
	ID          string          `json:"id"`
	Level       int             `json:"level"`
	Description string          `json:"description"`
	Source      CriterionSource `json:"source"`
	Required    bool            `json:"required"`
}

// Override is a teacher-recorded verdict for one criterion and student.
type Override struct {
	CriterionID string `json:"criterionId"`
	Status      Status `json:"status"`
}

// CriterionResult pairs a criterion with its resolved status.
type CriterionResult struct {
	Criterion Criterion `json:"criterion"`
	Status    Status    `json:"status"`
}

// EvaluateCriteria resolves the status of each criterion from the teacher
// overrides. Criteria without a verdict stay pending.
func EvaluateCriteria(criteria []Criterion, overrides []Override) []CriterionResult {
	byID := make(map[string]Status, len(overrides))
	for _, o := range overrides {
		byID[o.CriterionID] = o.Status
	}

	results := make([]CriterionResult, 0, len(criteria))
	for _, c := range criteria {
		status := StatusPending
		if s, ok := byID[c.ID]; ok && c.Source == SourceTeacher {
			status = s
		}
		results = append(results, CriterionResult{Criterion: c, Status: status})
	}
	return results
}

// Check is the outcome of a promotion evaluation.
type Check struct {
	Allowed  bool              `json:"allowed"`
	Missing  []string          `json:"missing"`
	XP       xp.Totals         `json:"xp"`
	Criteria []CriterionResult `json:"criteria"`
	Config   *Config           `json:"config,omitempty"`
}

// CheckPromotion decides whether a student may exit their current level. A
// missing config means the level has no gate and promotion is free. Otherwise
// every skill must meet its XP minimum and every required criterion must have
// passed; Missing lists each shortfall in display-ready form.
func CheckPromotion(cfg *Config, totals xp.Totals, criteria []CriterionResult) Check {
	if cfg == nil {
		return Check{Allowed: true, XP: totals}
	}

	var missing []string
	checkSkill := func(label string, got, min float64) {
		if got < min {
			missing = append(missing, fmt.Sprintf("%s XP: %.0f/%.0f", label, got, min))
		}
	}
	checkSkill("Flexibilidad", totals.Flexibility, cfg.MinXPFlex)
	checkSkill("Motricidad", totals.Motor, cfg.MinXPMotor)
	checkSkill("Articulación", totals.Articulation, cfg.MinXPArt)

	for _, r := range criteria {
		if r.Criterion.Required && r.Status != StatusPassed {
			missing = append(missing, fmt.Sprintf("Criterio no cumplido: %s", r.Criterion.Description))
		}
	}

	return Check{
		Allowed:  len(missing) == 0,
		Missing:  missing,
		XP:       totals,
		Criteria: criteria,
		Config:   cfg,
	}
}
