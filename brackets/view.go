package brackets

import (
	"cmp"
	"slices"

	"github.com/Dosada05/scorebridge/models"
)

// BuildView indexes a context and stamps every match with its round name. The context is not
// modified; the returned view owns fresh maps and slices.
func BuildView(ctx *models.TournamentContext) *models.TournamentView {
	view := &models.TournamentView{
		Context:          ctx,
		ParticipantsByID: make(map[models.PolymorphicID]models.Participant, len(ctx.Participants)),
		MatchesByID:      make(map[models.PolymorphicID]models.Match, len(ctx.Matches)),
		Alphabetical:     make([]models.Participant, 0, len(ctx.Participants)),
		MatchOrder:       make([]models.PolymorphicID, 0, len(ctx.Matches)),
	}

	for _, p := range ctx.Participants {
		if _, dup := view.ParticipantsByID[p.ID]; dup {
			continue
		}
		view.ParticipantsByID[p.ID] = p
		view.Alphabetical = append(view.Alphabetical, p)
	}

	slices.SortStableFunc(view.Alphabetical, func(a, b models.Participant) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), a.ID.Compare(b.ID))
	})

	extent := ExtentOf(ctx)
	namer := NamerFor(ctx.EliminationType)
	for _, m := range ctx.Matches {
		if _, dup := view.MatchesByID[m.ID]; dup {
			continue
		}
		m.RoundName = namer.RoundName(extent, m.RoundNumber)
		view.MatchesByID[m.ID] = m
		view.MatchOrder = append(view.MatchOrder, m.ID)
	}

	return view
}
