package handlers

import (
	"net/http"

	"github.com/Dosada05/scorebridge/models"
	"github.com/Dosada05/scorebridge/services"
)

type ScoreboardHandler struct {
	scoreboardService services.ScoreboardService
}

func NewScoreboardHandler(ss services.ScoreboardService) *ScoreboardHandler {
	return &ScoreboardHandler{scoreboardService: ss}
}

func (h *ScoreboardHandler) writeState(w http.ResponseWriter, r *http.Request, state models.ScoreboardInputState) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"scoreboard": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoreboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	h.writeState(w, r, h.scoreboardService.Get(userID))
}

func (h *ScoreboardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var input models.ScoreboardInputState
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.writeState(w, r, h.scoreboardService.Update(userID, input))
}

func (h *ScoreboardHandler) Swap(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	h.writeState(w, r, h.scoreboardService.Swap(userID))
}

func (h *ScoreboardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	h.writeState(w, r, h.scoreboardService.Reset(userID))
}

// SelectMatch fills the scoreboard from a match of a registered tournament.
func (h *ScoreboardHandler) SelectMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var input struct {
		Key     string               `json:"key"`
		MatchID models.PolymorphicID `json:"match_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.scoreboardService.SelectMatch(userID, input.Key, input.MatchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeState(w, r, state)
}

func (h *ScoreboardHandler) Publish(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	result, err := h.scoreboardService.Publish(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"published": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
