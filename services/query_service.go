package services

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Dosada05/scorebridge/models"
)

// QueryService answers read-only questions about a TournamentView.
type QueryService interface {
	GetPendingOpponents(view *models.TournamentView, participant models.Participant) []models.Participant
	GetPendingMatches(view *models.TournamentView) []models.Match
	GetAllMatchNames(view *models.TournamentView) []string
	FindParticipant(view *models.TournamentView, name string) (models.Participant, bool)
	ParticipantAutocompleteList(view *models.TournamentView, input string) []models.Participant
}

type queryService struct{}

func NewQueryService() QueryService {
	return &queryService{}
}

// GetPendingOpponents lists the other side of every unplayed match the participant is in.
// A participant met in several matches is listed once per match.
func (s *queryService) GetPendingOpponents(view *models.TournamentView, participant models.Participant) []models.Participant {
	var opponents []models.Participant
	for _, m := range view.Matches() {
		if !m.Status.AwaitingPlay() {
			continue
		}
		p1, ok1 := view.Player1(m)
		p2, ok2 := view.Player2(m)
		if !ok1 || !ok2 {
			continue
		}

		switch {
		case p1.ID == participant.ID && p2.ID != participant.ID:
			opponents = append(opponents, p2)
		case p2.ID == participant.ID && p1.ID != participant.ID:
			opponents = append(opponents, p1)
		}
	}
	return opponents
}

func (s *queryService) GetPendingMatches(view *models.TournamentView) []models.Match {
	var pending []models.Match
	for _, m := range view.Matches() {
		if isPendingMatch(view, m) {
			pending = append(pending, m)
		}
	}
	return pending
}

// isPendingMatch reports whether m is awaiting play with both sides resolved.
func isPendingMatch(view *models.TournamentView, m models.Match) bool {
	if !m.Status.AwaitingPlay() {
		return false
	}
	if _, ok := view.Player1(m); !ok {
		return false
	}
	_, ok := view.Player2(m)
	return ok
}

// GetAllMatchNames returns each distinct round name once, ordered by round number.
func (s *queryService) GetAllMatchNames(view *models.TournamentView) []string {
	matches := view.Matches()
	slices.SortStableFunc(matches, func(a, b models.Match) int {
		return cmp.Compare(a.RoundNumber, b.RoundNumber)
	})

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0)
	for _, m := range matches {
		if _, ok := seen[m.RoundName]; ok {
			continue
		}
		seen[m.RoundName] = struct{}{}
		names = append(names, m.RoundName)
	}
	return names
}

// FindParticipant returns the first participant, in host order, whose name matches ignoring case.
func (s *queryService) FindParticipant(view *models.TournamentView, name string) (models.Participant, bool) {
	if view.Context == nil {
		return models.Participant{}, false
	}
	for _, p := range view.Context.Participants {
		if strings.EqualFold(p.Name, name) {
			return view.ParticipantsByID[p.ID], true
		}
	}
	return models.Participant{}, false
}

// ParticipantAutocompleteList ranks every participant by edit distance to input. Nothing is
// filtered out; ties keep alphabetical order.
func (s *queryService) ParticipantAutocompleteList(view *models.TournamentView, input string) []models.Participant {
	out := slices.Clone(view.Alphabetical)
	if strings.TrimSpace(input) == "" {
		return out
	}

	distance := make(map[models.PolymorphicID]int, len(out))
	for _, p := range out {
		distance[p.ID] = Levenshtein(input, p.Name)
	}
	slices.SortStableFunc(out, func(a, b models.Participant) int {
		return cmp.Compare(distance[a.ID], distance[b.ID])
	})
	return out
}
