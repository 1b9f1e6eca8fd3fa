package models

type PlayerInput struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type Commentator struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// ScoreboardInputState is what the operator currently has on the overlay.
type ScoreboardInputState struct {
	TournamentURL string        `json:"tournament_url"`
	Player1       PlayerInput   `json:"player1"`
	Player2       PlayerInput   `json:"player2"`
	RoundName     string        `json:"round_name"`
	Commentators  []Commentator `json:"commentators"`
}

func (s *ScoreboardInputState) SwapPlayers() {
	s.Player1, s.Player2 = s.Player2, s.Player1
}

func (s *ScoreboardInputState) ResetScore() {
	s.Player1.Score = 0
	s.Player2.Score = 0
}
