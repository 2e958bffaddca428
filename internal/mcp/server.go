package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Woodshed", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Woodshed practice data server. Query assigned sessions and their flattened step sequences, practice history, per-skill XP, and promotion eligibility for music students."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolGetSessionSequence, Handler: h.getSessionSequence},
		server.ServerTool{Tool: toolGetPracticeSeries, Handler: h.getPracticeSeries},
		server.ServerTool{Tool: toolGetStudentXP, Handler: h.getStudentXP},
		server.ServerTool{Tool: toolCheckPromotion, Handler: h.checkPromotion},
		server.ServerTool{Tool: toolGetStudentStats, Handler: h.getStudentStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resSkillCatalog, Handler: h.skillCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resSkillCatalog = mcp.NewResource(
	"woodshed://skill_catalog",
	"Skill Catalog",
	mcp.WithResourceDescription("The tracked technique skills and the BPM ratio tiers used to score practiced blocks"),
	mcp.WithMIMEType("application/json"),
)
