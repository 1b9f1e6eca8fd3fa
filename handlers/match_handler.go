package handlers

import (
	"net/http"

	"github.com/Dosada05/scorebridge/models"
)

func (h *TournamentHandler) PendingMatches(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFromURL(w, r)
	if !ok {
		return
	}

	matches := h.queryService.GetPendingMatches(entry.View)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": toMatchViews(entry.View, matches)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReportScore godoc
// @Summary Отправить счёт матча на хост турнира
// @Tags matches
// @Accept json
// @Produce json
// @Param key path string true "Tournament key"
// @Param matchID path string true "Match ID"
// @Param body body object true "{\"scores\": [{\"participant_id\": 1, \"wins\": 2}, {\"participant_id\": 2, \"wins\": 1}]}"
// @Success 200 {object} models.RequestResult
// @Failure 422 {object} models.RequestResult "Хост или валидация отклонили счёт"
// @Security BearerAuth
// @Router /tournaments/{key}/matches/{matchID}/report [post]
func (h *TournamentHandler) ReportScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	entry, ok := h.entryFromURL(w, r)
	if !ok {
		return
	}
	matchID, err := getPolymorphicIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Scores []models.ScoreEntry `json:"scores"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result := h.tournamentService.ReportScore(r.Context(), userID, entry.Key, matchID, input.Scores)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	if err := writeJSON(w, status, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
