package services

import (
	"fmt"

	"github.com/Dosada05/scorebridge/models"
)

// ScorePublisher turns a finished match's score report into the write body each host expects.
// It never talks to the host itself.
type ScorePublisher interface {
	BuildChallongeUpdate(match models.Match, scores []models.ScoreEntry) (*models.ChallongeMatchUpdate, error)
	BuildStartGGReport(match models.Match, scores []models.ScoreEntry) (*models.StartGGReportBracketSet, error)
}

type scorePublisher struct{}

func NewScorePublisher() ScorePublisher {
	return &scorePublisher{}
}

func (p *scorePublisher) BuildChallongeUpdate(match models.Match, scores []models.ScoreEntry) (*models.ChallongeMatchUpdate, error) {
	if len(scores) != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrWrongScoreCount, len(scores))
	}

	p1, p2 := scores[0], scores[1]
	if p1.ParticipantID == match.Player2ID {
		p1, p2 = p2, p1
	}
	majority, _ := splitMajority(scores)

	return &models.ChallongeMatchUpdate{
		Match: models.ChallongeMatchScore{
			ScoresCSV: fmt.Sprintf("%d-%d", p1.Wins, p2.Wins),
			WinnerID:  majority.ParticipantID,
		},
	}, nil
}

// BuildStartGGReport synthesizes a game history since only set totals are known: all of the
// minority's games first, then the majority's, numbered from 1.
func (p *scorePublisher) BuildStartGGReport(match models.Match, scores []models.ScoreEntry) (*models.StartGGReportBracketSet, error) {
	if len(scores) != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrWrongScoreCount, len(scores))
	}

	majority, minority := splitMajority(scores)
	games := make([]models.StartGGGameData, 0, max(majority.Wins, 0)+max(minority.Wins, 0))
	gameNum := 1
	for range minority.Wins {
		games = append(games, models.StartGGGameData{WinnerID: minority.ParticipantID, GameNum: gameNum})
		gameNum++
	}
	for range majority.Wins {
		games = append(games, models.StartGGGameData{WinnerID: majority.ParticipantID, GameNum: gameNum})
		gameNum++
	}

	return &models.StartGGReportBracketSet{
		SetID:    match.ID,
		WinnerID: majority.ParticipantID,
		GameData: games,
	}, nil
}

// splitMajority picks the entry with more wins. A tied report has no real winner; the first
// entry is then treated as the majority and reported as the winner.
func splitMajority(scores []models.ScoreEntry) (majority, minority models.ScoreEntry) {
	if scores[1].Wins > scores[0].Wins {
		return scores[1], scores[0]
	}
	return scores[0], scores[1]
}
