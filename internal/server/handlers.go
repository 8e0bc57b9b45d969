package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/fithome/internal/alarm"
	"github.com/meltforce/fithome/internal/models"
	"github.com/meltforce/fithome/internal/session"
	"github.com/meltforce/fithome/internal/tracker"
)

// DayRequest is the body of session creation and day selection.
type DayRequest struct {
	DayID string `json:"day_id"`
}

// AddTimeRequest is the body of the timer add endpoint.
type AddTimeRequest struct {
	Seconds int `json:"seconds"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	days := s.sessions.Catalog().Days()
	views := make([]models.DayView, len(days))
	for i, d := range days {
		views[i] = d.View()
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.Catalog().Today(s.now()).View())
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	day, ok := s.sessions.Catalog().Day(chi.URLParam(r, "dayID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "day not found"})
		return
	}
	writeJSON(w, http.StatusOK, day.View())
}

func (s *Server) handleAlarmWAV(w http.ResponseWriter, r *http.Request) {
	tone, ok := alarm.ToneByName(chi.URLParam(r, "tone"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown tone"})
		return
	}
	data, err := alarm.WAV(tone, alarm.DefaultSampleRate)
	if err != nil {
		s.log.Error("rendering alarm tone", "tone", tone.Name, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req DayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	sess, err := s.sessions.Create(req.DayID)
	if errors.Is(err, tracker.ErrUnknownDay) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		s.log.Error("creating session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, sess.View())
}

// sessionFrom resolves the {id} URL param, writing a 404 when it is unknown.
func (s *Server) sessionFrom(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectDay(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	var req DayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := sess.SelectDay(req.DayID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleToggleExercise(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "exerciseID")
	done := sess.ToggleExercise(id)
	writeJSON(w, http.StatusOK, session.ToggleResult{ExerciseID: id, Completed: done, Session: sess.View()})
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	sess.ResetProgress()
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleCompleteAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	sess.CompleteAll()
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	stats, err := sess.Stats(r.URL.Query().Get("day"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTimerState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Timer().State())
}

func (s *Server) handleTimerAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	state, err := sess.TimerAction(chi.URLParam(r, "action"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleTimerAdd(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	var req AddTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	state, err := sess.Timer().AddTime(req.Seconds)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
