package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ffacttt-hash/frontend/internal/logger"
	"github.com/ffacttt-hash/frontend/internal/search"
)

// Actions the browser posts to a search session.
const (
	ActionInput         = "input"
	ActionSelect        = "select"
	ActionSubmit        = "submit"
	ActionFilters       = "filters"
	ActionClearFilters  = "clear-filters"
	ActionToggleFilters = "toggle-filters"
	ActionApplyFilters  = "apply-filters"
	ActionClear         = "clear"
	ActionDismiss       = "dismiss"
	ActionCloseResults  = "close-results"
	ActionVoiceStart    = "voice-start"
	ActionVoiceResult   = "voice-result"
	ActionVoiceError    = "voice-error"
	ActionVoiceEnd      = "voice-end"
)

type createSessionRequest struct {
	Speech bool `json:"speech"`
}

type sessionResponse struct {
	ID       string          `json:"id"`
	Snapshot search.Snapshot `json:"snapshot"`
}

type sessionAction struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Filters *search.Filters `json:"filters,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (h *Handler) postSession(w http.ResponseWriter, r *http.Request) error {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			return badRequest("bad request")
		}
	}

	sess := h.sessions.Create(req.Speech)
	h.setSessionCookie(w, sess.ID())
	h.log.Debug("search session created", slog.String("search_session", sess.ID()), slog.Bool("speech", req.Speech))

	writeJSON(w, http.StatusCreated, &sessionResponse{ID: sess.ID(), Snapshot: sess.Snapshot()})
	return nil
}

// session resolves the {id} URL parameter to a session the caller owns.
func (h *Handler) session(r *http.Request) (*search.Session, error) {
	id := chi.URLParam(r, "id")
	if !h.ownsSession(r, id) {
		return nil, forbidden("search session belongs to another client")
	}
	sess, err := h.sessions.Get(id)
	if err != nil {
		return nil, notFound("search session not found")
	}
	return sess, nil
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) error {
	sess, err := h.session(r)
	if err != nil {
		return err
	}
	h.sessions.Remove(sess.ID())
	clearSessionCookie(w, sess.ID())
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// getSessionEvents streams snapshots as server-sent events until the
// browser goes away, then drops the session.
func (h *Handler) getSessionEvents(w http.ResponseWriter, r *http.Request) error {
	sess, err := h.session(r)
	if err != nil {
		return err
	}
	log := h.log.With(slog.String("search_session", sess.ID()))

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Debug("search events: clear write deadline failed", logger.Error(err))
	}

	snapshots, unsubscribe := sess.Subscribe()
	defer h.sessions.Remove(sess.ID())
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ping := time.NewTicker(h.keepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return nil
		case snap, ok := <-snapshots:
			if !ok {
				return nil
			}
			if err := writeSnapshot(w, rc, &snap); err != nil {
				log.Debug("search events: client gone", logger.Error(err))
				return nil
			}
		case <-ping.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return nil
			}
			if err := rc.Flush(); err != nil {
				return nil
			}
		}
	}
}

func writeSnapshot(w io.Writer, rc *http.ResponseController, snap *search.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: snapshot\nid: %d\ndata: %s\n\n", snap.Version, data); err != nil {
		return err
	}
	return rc.Flush()
}

func (h *Handler) postSessionAction(w http.ResponseWriter, r *http.Request) error {
	sess, err := h.session(r)
	if err != nil {
		return err
	}

	var a sessionAction
	if err := decodeJSON(r, &a); err != nil {
		return badRequest("bad request")
	}

	switch a.Type {
	case ActionInput:
		sess.Input(a.Text)
	case ActionSelect:
		sess.SelectSuggestion(a.Text)
	case ActionSubmit:
		sess.Submit()
	case ActionFilters:
		if a.Filters == nil {
			return badRequest("filters are required")
		}
		sess.SetFilters(*a.Filters)
	case ActionClearFilters:
		sess.ClearFilters()
	case ActionToggleFilters:
		sess.ToggleFilters()
	case ActionApplyFilters:
		sess.ApplyFilters()
	case ActionClear:
		sess.Clear()
	case ActionDismiss:
		sess.Dismiss()
	case ActionCloseResults:
		sess.CloseResults()
	case ActionVoiceStart:
		if err := sess.StartVoice(); err != nil {
			if errors.Is(err, search.ErrSpeechUnsupported) {
				return conflict(search.SpeechUnsupportedNotice)
			}
			return conflict(err.Error())
		}
	case ActionVoiceResult, ActionVoiceError, ActionVoiceEnd:
		if err := relayVoice(sess, &a); err != nil {
			return err
		}
	default:
		return badRequest("unknown action")
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// relayVoice forwards a browser recognition outcome. Outcomes that arrive
// after the recognition already ended are ignored; the browser reports an
// end after every result or error.
func relayVoice(sess *search.Session, a *sessionAction) error {
	relay, ok := sess.Speech().(*search.Relay)
	if !ok {
		return conflict(search.SpeechUnsupportedNotice)
	}

	var err error
	switch a.Type {
	case ActionVoiceResult:
		err = relay.Deliver(a.Text)
	case ActionVoiceError:
		err = relay.Fail(errors.New(a.Error))
	default:
		err = relay.End()
	}
	if errors.Is(err, search.ErrNotListening) {
		return nil
	}
	return err
}
