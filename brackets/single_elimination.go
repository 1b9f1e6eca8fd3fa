package brackets

import "fmt"

type SingleEliminationNamer struct{}

func NewSingleEliminationNamer() RoundNamer {
	return &SingleEliminationNamer{}
}

func (n *SingleEliminationNamer) GetName() string {
	return "SingleElimination"
}

func (n *SingleEliminationNamer) RoundName(extent Extent, round int64) string {
	switch round {
	case extent.MaxRoundWinners:
		return "Grand Finals"
	case extent.MaxRoundWinners - 1:
		return "Finals"
	case extent.MaxRoundWinners - 2:
		return "SemiFinals"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}
