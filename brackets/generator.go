package brackets

import "github.com/Dosada05/scorebridge/models"

// Extent is the round range of a bracket: MaxRoundWinners >= 0, MaxRoundLosers <= 0.
type Extent struct {
	MaxRoundWinners int64
	MaxRoundLosers  int64
}

func ExtentOf(ctx *models.TournamentContext) Extent {
	return Extent{MaxRoundWinners: ctx.MaxRoundWinners, MaxRoundLosers: ctx.MaxRoundLosers}
}

type RoundNamer interface {
	RoundName(extent Extent, round int64) string

	GetName() string
}

var (
	singleEliminationNamer = NewSingleEliminationNamer()
	doubleEliminationNamer = NewDoubleEliminationNamer()
	roundRobinNamer        = NewRoundRobinNamer()
)

func NamerFor(t models.EliminationType) RoundNamer {
	switch t {
	case models.SingleElimination:
		return singleEliminationNamer
	case models.DoubleElimination:
		return doubleEliminationNamer
	default:
		return roundRobinNamer
	}
}

// GetRoundName labels a round for display. It is total: every input yields a name.
func GetRoundName(extent Extent, t models.EliminationType, round int64) string {
	return NamerFor(t).RoundName(extent, round)
}
