package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/scorebridge/models"
	"github.com/Dosada05/scorebridge/services"
	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	queryService      services.QueryService
}

func NewTournamentHandler(ts services.TournamentService, qs services.QueryService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		queryService:      qs,
	}
}

type matchView struct {
	ID            models.PolymorphicID `json:"id"`
	Round         int64                `json:"round"`
	RoundName     string               `json:"round_name"`
	HostRoundText string               `json:"host_round_text,omitempty"`
	Identifier    string               `json:"identifier,omitempty"`
	Status        models.MatchStatus   `json:"status"`
	Player1       *models.Participant  `json:"player1"`
	Player2       *models.Participant  `json:"player2"`
}

func toMatchView(view *models.TournamentView, m models.Match) matchView {
	mv := matchView{
		ID:            m.ID,
		Round:         m.RoundNumber,
		RoundName:     m.RoundName,
		HostRoundText: m.HostRoundText,
		Identifier:    m.Identifier,
		Status:        m.Status,
	}
	if p, ok := view.Player1(m); ok {
		mv.Player1 = &p
	}
	if p, ok := view.Player2(m); ok {
		mv.Player2 = &p
	}
	return mv
}

func toMatchViews(view *models.TournamentView, matches []models.Match) []matchView {
	out := make([]matchView, 0, len(matches))
	for _, m := range matches {
		out = append(out, toMatchView(view, m))
	}
	return out
}

// entryFromURL resolves the {key} path parameter to a registered tournament.
func (h *TournamentHandler) entryFromURL(w http.ResponseWriter, r *http.Request) (*services.TournamentEntry, bool) {
	key := chi.URLParam(r, "key")
	if key == "" {
		badRequestResponse(w, r, errors.New("missing tournament key in URL path"))
		return nil, false
	}
	entry, err := h.tournamentService.Get(key)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return nil, false
	}
	return entry, true
}

// Load godoc
// @Summary Загрузить турнир по ссылке Challonge или start.gg
// @Tags tournaments
// @Accept json
// @Produce json
// @Param body body object true "{\"url\": \"https://challonge.com/weekly12\"}"
// @Success 201 {object} services.TournamentSummary
// @Failure 400 {object} map[string]string "Неподдерживаемая ссылка"
// @Failure 502 {object} map[string]string "Хост недоступен"
// @Security BearerAuth
// @Router /tournaments [post]
func (h *TournamentHandler) Load(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var input struct {
		URL string `json:"url"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.tournamentService.Load(r.Context(), userID, input.URL)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": entry.Summary()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	keys := h.tournamentService.Keys()
	summaries := make([]services.TournamentSummary, 0, len(keys))
	for _, key := range keys {
		entry, err := h.tournamentService.Get(key)
		if err != nil {
			// unwatched between Keys and Get
			continue
		}
		summaries = append(summaries, entry.Summary())
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": summaries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFromURL(w, r)
	if !ok {
		return
	}

	view := entry.View
	response := jsonResponse{
		"tournament":   entry.Summary(),
		"participants": view.Alphabetical,
		"matches":      toMatchViews(view, view.Matches()),
		"rounds":       h.queryService.GetAllMatchNames(view),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	entry, err := h.tournamentService.Refresh(r.Context(), key)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": entry.Summary()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Unwatch(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.Unwatch(chi.URLParam(r, "key")); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) Rounds(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFromURL(w, r)
	if !ok {
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": h.queryService.GetAllMatchNames(entry.View)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
