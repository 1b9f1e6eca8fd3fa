package brackets

import "fmt"

type DoubleEliminationNamer struct{}

func NewDoubleEliminationNamer() RoundNamer {
	return &DoubleEliminationNamer{}
}

func (n *DoubleEliminationNamer) GetName() string {
	return "DoubleElimination"
}

// RoundName checks the conditions in order and the first hit wins, so on small brackets
// Grand Finals takes precedence over a coinciding losers threshold.
func (n *DoubleEliminationNamer) RoundName(extent Extent, round int64) string {
	side := "Winners"
	if round < 0 {
		side = "Losers"
	}

	switch {
	case round == extent.MaxRoundWinners:
		return "Grand Finals"
	case round == extent.MaxRoundWinners-1 || round == extent.MaxRoundLosers:
		return side + " Finals"
	case round == extent.MaxRoundWinners-2 || round == extent.MaxRoundLosers+1:
		return side + " SemiFinals"
	default:
		return fmt.Sprintf("%s Round %d", side, abs(round))
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
