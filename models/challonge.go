package models

// Challonge v1 payloads. Every list item is wrapped in a single-key object.

type ChallongeTournamentEnvelope struct {
	Tournament ChallongeTournament `json:"tournament"`
}

type ChallongeTournament struct {
	ID                int64                          `json:"id"`
	Name              string                         `json:"name"`
	URL               string                         `json:"url"`
	FullChallongeURL  string                         `json:"full_challonge_url"`
	TournamentType    string                         `json:"tournament_type"`
	State             string                         `json:"state"`
	ParticipantsCount int                            `json:"participants_count"`
	Participants      []ChallongeParticipantEnvelope `json:"participants,omitempty"`
	Matches           []ChallongeMatchEnvelope       `json:"matches,omitempty"`
}

type ChallongeParticipantEnvelope struct {
	Participant ChallongeParticipant `json:"participant"`
}

type ChallongeParticipant struct {
	ID          PolymorphicID `json:"id"`
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name,omitempty"`
}

// DisplayedName prefers the organizer-entered name and falls back to the account display name.
func (p ChallongeParticipant) DisplayedName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.DisplayName
}

type ChallongeMatchEnvelope struct {
	Match ChallongeMatch `json:"match"`
}

type ChallongeMatch struct {
	ID         PolymorphicID `json:"id"`
	Player1ID  PolymorphicID `json:"player1_id"`
	Player2ID  PolymorphicID `json:"player2_id"`
	WinnerID   PolymorphicID `json:"winner_id"`
	State      string        `json:"state"`
	Round      int64         `json:"round"`
	Identifier string        `json:"identifier"`
	ScoresCSV  string        `json:"scores_csv,omitempty"`
}

// ChallongeMatchUpdate is the body of PUT /tournaments/{id}/matches/{match_id}.json.
type ChallongeMatchUpdate struct {
	Match ChallongeMatchScore `json:"match"`
}

type ChallongeMatchScore struct {
	ScoresCSV string        `json:"scores_csv"`
	WinnerID  PolymorphicID `json:"winner_id"`
}

// ChallongeErrorResponse is returned with 422 Unprocessable Entity.
type ChallongeErrorResponse struct {
	Errors []string `json:"errors"`
}
