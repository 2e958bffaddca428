package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/woodshedhq/woodshed/internal/xp"
)

func (h *handlers) skillCatalog(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	catalog := map[string]any{
		"skills": []xp.Skill{xp.SkillMotor, xp.SkillArticulation, xp.SkillFlexibility},
		"bpm_tiers": []map[string]any{
			{"min_ratio": 1.0, "xp": 100},
			{"min_ratio": 0.9, "xp": 80},
			{"min_ratio": 0.75, "xp": 60},
			{"min_ratio": 0.5, "xp": 40},
			{"min_ratio": 0.0, "xp": 20},
		},
	}

	data, err := json.Marshal(catalog)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
