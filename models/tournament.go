package models

type Host string

const (
	HostUnknown   Host = ""
	HostChallonge Host = "challonge"
	HostStartGG   Host = "startgg"
)

type MatchStatus int

const (
	MatchStatusUnknown MatchStatus = iota
	MatchStatusPending
	MatchStatusOpen
	MatchStatusComplete
)

func (s MatchStatus) String() string {
	switch s {
	case MatchStatusPending:
		return "pending"
	case MatchStatusOpen:
		return "open"
	case MatchStatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// AwaitingPlay treats both Pending and Open as not yet played; the hosts disagree on which
// of the two means "ready".
func (s MatchStatus) AwaitingPlay() bool {
	return s == MatchStatusPending || s == MatchStatusOpen
}

func (s MatchStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *MatchStatus) UnmarshalText(data []byte) error {
	switch string(data) {
	case "pending":
		*s = MatchStatusPending
	case "open":
		*s = MatchStatusOpen
	case "complete":
		*s = MatchStatusComplete
	default:
		*s = MatchStatusUnknown
	}
	return nil
}

type EliminationType int

const (
	DoubleElimination EliminationType = iota
	SingleElimination
	RoundRobin
)

func (t EliminationType) String() string {
	switch t {
	case SingleElimination:
		return "single elimination"
	case RoundRobin:
		return "round robin"
	default:
		return "double elimination"
	}
}

func (t EliminationType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *EliminationType) UnmarshalText(data []byte) error {
	*t = ParseEliminationType(string(data))
	return nil
}

// ParseEliminationType matches the exact lowercase phrase; anything else is double elimination.
func ParseEliminationType(s string) EliminationType {
	switch s {
	case "single elimination":
		return SingleElimination
	case "double elimination":
		return DoubleElimination
	case "round robin":
		return RoundRobin
	default:
		return DoubleElimination
	}
}

type Participant struct {
	ID   PolymorphicID `json:"id"`
	Name string        `json:"name"`
}

// Match keeps only participant ids; resolve them through the owning TournamentView.
type Match struct {
	ID            PolymorphicID `json:"id"`
	Player1ID     PolymorphicID `json:"player1_id"`
	Player2ID     PolymorphicID `json:"player2_id"`
	RoundNumber   int64         `json:"round"`
	Status        MatchStatus   `json:"status"`
	RoundName     string        `json:"round_name"`
	Identifier    string        `json:"identifier,omitempty"`
	HostRoundText string        `json:"host_round_text,omitempty"`
}

// TournamentContext is the raw aggregate fetched from one host. Host selects which of the raw
// payload fields is populated; Participants and Matches are the canonical projection of it.
type TournamentContext struct {
	Host            Host                 `json:"host"`
	URL             string               `json:"url"`
	TournamentID    string               `json:"tournament_id"`
	Name            string               `json:"name"`
	EliminationType EliminationType      `json:"elimination_type"`
	MaxRoundWinners int64                `json:"max_round_winners"`
	MaxRoundLosers  int64                `json:"max_round_losers"`
	Participants    []Participant        `json:"participants"`
	Matches         []Match              `json:"matches"`
	Challonge       *ChallongeTournament `json:"challonge,omitempty"`
	StartGG         *StartGGEvent        `json:"startgg,omitempty"`
	Errors          []string             `json:"errors,omitempty"`
}

// IsValid reports whether the fetch produced a payload with no recorded errors.
func (c *TournamentContext) IsValid() bool {
	if c == nil || len(c.Errors) > 0 {
		return false
	}
	switch c.Host {
	case HostChallonge:
		return c.Challonge != nil
	case HostStartGG:
		return c.StartGG != nil
	default:
		return false
	}
}

func (c *TournamentContext) AddError(msg string) {
	c.Errors = append(c.Errors, msg)
}

// TournamentView is built once per fetch and is read-only afterwards.
type TournamentView struct {
	Context          *TournamentContext
	ParticipantsByID map[PolymorphicID]Participant
	MatchesByID      map[PolymorphicID]Match
	Alphabetical     []Participant
	// MatchOrder keeps the host's match order for deterministic iteration.
	MatchOrder []PolymorphicID
}

func (v *TournamentView) Participant(id PolymorphicID) (Participant, bool) {
	if !id.HasValue() {
		return Participant{}, false
	}
	p, ok := v.ParticipantsByID[id]
	return p, ok
}

func (v *TournamentView) Player1(m Match) (Participant, bool) {
	return v.Participant(m.Player1ID)
}

func (v *TournamentView) Player2(m Match) (Participant, bool) {
	return v.Participant(m.Player2ID)
}

// Matches returns every match in host order.
func (v *TournamentView) Matches() []Match {
	out := make([]Match, 0, len(v.MatchOrder))
	for _, id := range v.MatchOrder {
		out = append(out, v.MatchesByID[id])
	}
	return out
}
