package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/meltforce/fithome/internal/session"
)

// handleEvents streams a session's events as Server-Sent Events. The first
// event is a "snapshot" carrying the full view.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	events, stop := sess.Subscribe()
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "snapshot", sess.View()); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		s.log.Warn("event stream cannot flush", "error", err)
		return
	}

	keepalive := time.NewTicker(s.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, ev.Type, ev); err != nil {
				return
			}
			rc.Flush()
			if ev.Type == session.EventClosed {
				return
			}

		case <-keepalive.C:
			// An open stream counts as activity for the idle sweep.
			sess.Touch(s.now())
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			rc.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
