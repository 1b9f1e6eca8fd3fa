package brackets

import "fmt"

type RoundRobinNamer struct{}

func NewRoundRobinNamer() RoundNamer {
	return &RoundRobinNamer{}
}

func (n *RoundRobinNamer) GetName() string {
	return "RoundRobin"
}

func (n *RoundRobinNamer) RoundName(_ Extent, round int64) string {
	return fmt.Sprintf("Round %d", round)
}
