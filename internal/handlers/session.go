package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"turnaround/internal/game"
	"turnaround/views/components"
)

type SessionHandler struct {
	store      *game.Store
	instructor Instructor
}

func NewSessionHandler(store *game.Store, instructor Instructor) *SessionHandler {
	return &SessionHandler{store: store, instructor: instructor}
}

func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.state)
		r.Get("/board", h.board)
		r.Get("/stream", h.stream)
		r.Post("/decisions", h.submitDecision)
		r.Post("/advance", h.advanceRound)
		r.Post("/reset", h.resetGame)
		r.Delete("/", h.deleteSession)
	})
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	id := chi.URLParam(r, "id")
	session, ok := h.store.GetSession(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", game.ErrNotFound, id))
		return nil, false
	}
	return session, true
}

func (h *SessionHandler) state(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(session.Snapshot()))
}

func (h *SessionHandler) board(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	render(w, r, components.Board(toBoard(session.Snapshot())))
}

func (h *SessionHandler) submitDecision(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, fmt.Errorf("%w: invalid form", errBadRequest))
		return
	}
	role := r.FormValue("role")
	choice := r.FormValue("choice")
	round, err := strconv.Atoi(strings.TrimSpace(r.FormValue("round")))
	if err != nil {
		writeError(w, fmt.Errorf("%w: round must be a number", errBadRequest))
		return
	}
	current, err := session.Decide(role, round, choice)
	if err != nil {
		log.Printf("decision rejected session=%s role=%q round=%d choice=%q err=%v", session.ID, role, round, choice, err)
		writeError(w, err)
		return
	}
	log.Printf("decision session=%s role=%q round=%d choice=%q", session.ID, role, round, choice)
	h.store.Publish(session.ID, game.EventDecision, round)
	if current != round || session.IsGameOver() {
		h.store.Publish(session.ID, game.EventRound, current)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) advanceRound(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	current, err := session.Advance(h.instructor.Authorized(r))
	if err != nil {
		writeError(w, err)
		return
	}
	log.Printf("round advanced session=%s round=%d", session.ID, current)
	h.store.Publish(session.ID, game.EventRound, current)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) resetGame(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := session.Reset(h.instructor.Authorized(r)); err != nil {
		writeError(w, err)
		return
	}
	log.Printf("game reset session=%s", session.ID)
	h.store.Publish(session.ID, game.EventReset, 1)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) deleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if !h.instructor.Authorized(r) {
		writeError(w, fmt.Errorf("%w: deleting a session needs instructor access", errForbidden))
		return
	}
	if err := h.store.DeleteSession(session.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) stream(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	hub, ok := h.store.Broadcaster(session.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	sendBoard := func(event string) {
		writeSSE(w, event, renderToString(r, components.Board(toBoard(session.Snapshot()))))
		flusher.Flush()
	}

	sendBoard("board")

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				return
			}
			sendBoard(event.Name)
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}
