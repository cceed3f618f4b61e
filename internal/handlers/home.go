package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"turnaround/internal/engine"
	"turnaround/internal/game"
)

type HomeHandler struct {
	store *game.Store
	rules engine.Rules
	seed  uint64
}

// NewHomeHandler creates sessions under rules. A non-zero seed makes every
// new session deal the same event cards and risk rolls.
func NewHomeHandler(store *game.Store, rules engine.Rules, seed uint64) *HomeHandler {
	return &HomeHandler{store: store, rules: rules, seed: seed}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.health)
	r.Get("/sessions", h.listSessions)
	r.Post("/sessions", h.createSession)
}

func (h *HomeHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HomeHandler) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.store.Sessions()
	out := make([]sessionSummaryJSON, 0, len(sessions))
	for _, s := range sessions {
		snap := s.Snapshot()
		out = append(out, sessionSummaryJSON{
			ID:           snap.ID,
			Name:         snap.Name,
			CreatedAt:    snap.CreatedAt,
			CurrentRound: snap.CurrentRound,
			TotalRounds:  snap.TotalRounds,
			GameOver:     snap.GameOver,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HomeHandler) createSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, fmt.Errorf("%w: invalid form", errBadRequest))
		return
	}
	seed := h.seed
	if raw := strings.TrimSpace(r.FormValue("seed")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, fmt.Errorf("%w: seed must be a non-negative integer", errBadRequest))
			return
		}
		seed = parsed
	}
	session, err := h.store.CreateSession(r.FormValue("name"), h.rules, engine.NewRandomSource(seed))
	if err != nil {
		writeError(w, err)
		return
	}
	log.Printf("session created id=%s name=%q", session.ID, session.Name)
	w.Header().Set("Location", "/sessions/"+session.ID)
	writeJSON(w, http.StatusCreated, toSessionJSON(session.Snapshot()))
}
