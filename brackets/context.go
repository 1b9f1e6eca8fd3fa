package brackets

import "github.com/Dosada05/scorebridge/models"

// NewChallongeContext projects a Challonge tournament onto the canonical model.
// Round numbers are signed there: negative rounds belong to the losers bracket.
func NewChallongeContext(t *models.ChallongeTournament, url, tournamentID string) *models.TournamentContext {
	ctx := &models.TournamentContext{
		Host:            models.HostChallonge,
		URL:             url,
		TournamentID:    tournamentID,
		Name:            t.Name,
		EliminationType: models.ParseEliminationType(t.TournamentType),
		Challonge:       t,
		Participants:    make([]models.Participant, 0, len(t.Participants)),
		Matches:         make([]models.Match, 0, len(t.Matches)),
	}

	for _, env := range t.Participants {
		p := env.Participant
		ctx.Participants = append(ctx.Participants, models.Participant{ID: p.ID, Name: p.DisplayedName()})
	}

	for _, env := range t.Matches {
		m := env.Match
		ctx.Matches = append(ctx.Matches, models.Match{
			ID:          m.ID,
			Player1ID:   m.Player1ID,
			Player2ID:   m.Player2ID,
			RoundNumber: m.Round,
			Status:      challongeMatchStatus(m.State),
			Identifier:  m.Identifier,
		})
		if m.Round > ctx.MaxRoundWinners {
			ctx.MaxRoundWinners = m.Round
		}
		if m.Round < ctx.MaxRoundLosers {
			ctx.MaxRoundLosers = m.Round
		}
	}

	return ctx
}

func challongeMatchStatus(state string) models.MatchStatus {
	switch state {
	case "pending":
		return models.MatchStatusPending
	case "open":
		return models.MatchStatusOpen
	case "complete":
		return models.MatchStatusComplete
	default:
		return models.MatchStatusUnknown
	}
}

// NewStartGGContext projects a start.gg event, with all of its set pages already merged, onto
// the canonical model. Entrants are collected from set slots in first-seen order. start.gg has
// no tournament-level bracket type in this payload, so the elimination type is the default and
// the losers extent stays 0.
func NewStartGGContext(ev *models.StartGGEvent, url, slug string) *models.TournamentContext {
	ctx := &models.TournamentContext{
		Host:            models.HostStartGG,
		URL:             url,
		TournamentID:    slug,
		Name:            ev.Name,
		EliminationType: models.DoubleElimination,
		StartGG:         ev,
		Matches:         make([]models.Match, 0, len(ev.Sets.Nodes)),
	}

	seen := make(map[models.PolymorphicID]struct{})
	for _, set := range ev.Sets.Nodes {
		var players [2]models.PolymorphicID
		for i, slot := range set.Slots {
			if i >= len(players) || slot.Entrant == nil || !slot.Entrant.ID.HasValue() {
				continue
			}
			players[i] = slot.Entrant.ID
			if _, ok := seen[slot.Entrant.ID]; !ok {
				seen[slot.Entrant.ID] = struct{}{}
				ctx.Participants = append(ctx.Participants, models.Participant{ID: slot.Entrant.ID, Name: slot.Entrant.Name})
			}
		}

		ctx.Matches = append(ctx.Matches, models.Match{
			ID:            set.ID,
			Player1ID:     players[0],
			Player2ID:     players[1],
			RoundNumber:   set.Round,
			Status:        startGGMatchStatus(set.State),
			Identifier:    set.Identifier,
			HostRoundText: set.FullRoundText,
		})
		if set.Round > ctx.MaxRoundWinners {
			ctx.MaxRoundWinners = set.Round
		}
	}

	return ctx
}

func startGGMatchStatus(state models.StartGGSetState) models.MatchStatus {
	switch state {
	case models.StartGGSetPending:
		return models.MatchStatusPending
	case models.StartGGSetOpen:
		return models.MatchStatusOpen
	case models.StartGGSetComplete:
		return models.MatchStatusComplete
	default:
		return models.MatchStatusUnknown
	}
}
