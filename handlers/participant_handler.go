package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/scorebridge/services"
)

// Participants returns everyone ranked by edit distance to ?q=, or alphabetically when q is
// empty.
func (h *TournamentHandler) Participants(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFromURL(w, r)
	if !ok {
		return
	}

	list := h.queryService.ParticipantAutocompleteList(entry.View, r.URL.Query().Get("q"))
	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": list}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) FindParticipant(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFromURL(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		badRequestResponse(w, r, errors.New("name query parameter is required"))
		return
	}

	participant, found := h.queryService.FindParticipant(entry.View, name)
	if !found {
		mapServiceErrorToHTTP(w, r, services.ErrParticipantNotFound)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) PendingOpponents(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFromURL(w, r)
	if !ok {
		return
	}
	participantID, err := getPolymorphicIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, found := entry.View.Participant(participantID)
	if !found {
		mapServiceErrorToHTTP(w, r, services.ErrParticipantNotFound)
		return
	}

	opponents := h.queryService.GetPendingOpponents(entry.View, participant)
	response := jsonResponse{"participant": participant, "opponents": opponents}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
