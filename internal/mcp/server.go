package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(b Backend, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitHome", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitHome home workout tracker. Start a session to follow a day's exercises, tick them off as they are done and run the rest timer between sets. Sessions live in memory only."),
	)

	h := &handlers{b: b, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListDays, Handler: h.listDays},
		server.ServerTool{Tool: toolGetToday, Handler: h.getToday},
		server.ServerTool{Tool: toolStartSession, Handler: h.startSession},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolEndSession, Handler: h.endSession},
		server.ServerTool{Tool: toolSelectDay, Handler: h.selectDay},
		server.ServerTool{Tool: toolToggleExercise, Handler: h.toggleExercise},
		server.ServerTool{Tool: toolCompleteAll, Handler: h.completeAll},
		server.ServerTool{Tool: toolResetProgress, Handler: h.resetProgress},
		server.ServerTool{Tool: toolGetStats, Handler: h.getStats},
		server.ServerTool{Tool: toolTimerControl, Handler: h.timerControl},
		server.ServerTool{Tool: toolTimerAddTime, Handler: h.timerAddTime},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCatalog, Handler: h.catalog},
		server.ServerResource{Resource: resToday, Handler: h.today},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	b   Backend
	log *slog.Logger
}

// --- Resource definitions ---

var resCatalog = mcp.NewResource(
	"fithome://catalog",
	"Workout Plan",
	mcp.WithResourceDescription("Every day of the weekly plan with its exercises, sets and reps"),
	mcp.WithMIMEType("application/json"),
)

var resToday = mcp.NewResource(
	"fithome://today",
	"Today's Workout",
	mcp.WithResourceDescription("The plan for the current weekday"),
	mcp.WithMIMEType("application/json"),
)
