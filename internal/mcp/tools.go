package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListDays = mcp.NewTool("list_days",
	mcp.WithDescription("List every day of the weekly workout plan with its exercises (id, name, sets, reps)."),
)

var toolGetToday = mcp.NewTool("get_today",
	mcp.WithDescription("Get the workout planned for the current weekday. Weekends fall back to the first day."),
)

var toolStartSession = mcp.NewTool("start_session",
	mcp.WithDescription("Start a workout session. Returns the session id used by every other session tool, the selected day, completion stats and the rest timer."),
	mcp.WithString("day", mcp.Description("Day id to show (e.g. 'monday'). Defaults to today's workout.")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get a session's selected day, completed exercises, stats and rest timer."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from start_session")),
)

var toolEndSession = mcp.NewTool("end_session",
	mcp.WithDescription("End a session. Its progress is discarded and its timer stops."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from start_session")),
)

var toolSelectDay = mcp.NewTool("select_day",
	mcp.WithDescription("Switch the day a session shows. Exercises already marked done stay marked."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from start_session")),
	mcp.WithString("day", mcp.Required(), mcp.Description("Day id (see list_days)")),
)

var toolToggleExercise = mcp.NewTool("toggle_exercise",
	mcp.WithDescription("Mark an exercise done, or undo the mark if it is already done."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from start_session")),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise id (e.g. 'wed-3')")),
)

var toolCompleteAll = mcp.NewTool("complete_all",
	mcp.WithDescription("Mark exactly the selected day's exercises as done. Marks on other days are dropped."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from start_session")),
)

var toolResetProgress = mcp.NewTool("reset_progress",
	mcp.WithDescription("Clear every completion mark in the session, on all days."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from start_session")),
)

var toolGetStats = mcp.NewTool("get_stats",
	mcp.WithDescription("Completed count, total and rounded percentage for a day."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from start_session")),
	mcp.WithString("day", mcp.Description("Day id. Defaults to the session's selected day.")),
)

var toolTimerControl = mcp.NewTool("timer_control",
	mcp.WithDescription("Control the rest timer. On reaching zero it rings and rolls back to its full duration."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from start_session")),
	mcp.WithString("action", mcp.Required(), mcp.Description("Timer action"), mcp.Enum("start", "pause", "toggle", "reset")),
)

var toolTimerAddTime = mcp.NewTool("timer_add_time",
	mcp.WithDescription("Add seconds to the rest timer in any state. The full duration is unchanged, so progress can go negative."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from start_session")),
	mcp.WithNumber("seconds", mcp.Required(), mcp.Description("Seconds to add (positive, e.g. 10, 30 or 50)")),
)

// --- Tool handlers ---

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listDays(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days, err := h.b.ListDays(ctx)
	if err != nil {
		h.log.Error("mcp list_days", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(days)
}

func (h *handlers) getToday(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := h.b.Today(ctx)
	if err != nil {
		h.log.Error("mcp get_today", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(day)
}

func (h *handlers) startSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := h.b.StartSession(ctx, req.GetString("day", ""))
	if err != nil {
		return mcp.NewToolResultError("starting session: " + err.Error()), nil
	}
	return jsonResult(v)
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	v, err := h.b.GetSession(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

func (h *handlers) endSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	if err := h.b.EndSession(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("session ended"), nil
}

func (h *handlers) selectDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	day, err := req.RequireString("day")
	if err != nil {
		return mcp.NewToolResultError("day parameter is required"), nil
	}
	v, err := h.b.SelectDay(ctx, id, day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

func (h *handlers) toggleExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	r, err := h.b.ToggleExercise(ctx, id, exerciseID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(r)
}

func (h *handlers) completeAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	v, err := h.b.CompleteAll(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

func (h *handlers) resetProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	v, err := h.b.ResetProgress(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

func (h *handlers) getStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	stats, err := h.b.Stats(ctx, id, req.GetString("day", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) timerControl(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	action, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action parameter is required"), nil
	}
	state, err := h.b.TimerControl(ctx, id, action)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(state)
}

func (h *handlers) timerAddTime(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	seconds, err := req.RequireInt("seconds")
	if err != nil {
		return mcp.NewToolResultError("seconds parameter is required"), nil
	}
	if seconds <= 0 {
		return mcp.NewToolResultError("seconds must be positive"), nil
	}
	state, err := h.b.TimerAddTime(ctx, id, seconds)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(state)
}
