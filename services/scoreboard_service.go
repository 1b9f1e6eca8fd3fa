package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/Dosada05/scorebridge/models"
	"github.com/Dosada05/scorebridge/repositories"
	"github.com/Dosada05/scorebridge/storage"
	"github.com/gosimple/slug"
)

const scoreboardContentType = "text/plain; charset=utf-8"

// OutputFile is one overlay text file as written by Publish.
type OutputFile struct {
	Name     string `json:"name"`
	Contents string `json:"contents"`
	URL      string `json:"url,omitempty"`
}

type PublishResult struct {
	Prefix string       `json:"prefix"`
	Files  []OutputFile `json:"files"`
}

// ScoreboardService keeps each operator's overlay input and writes it out as the text files that
// streaming software reads.
type ScoreboardService interface {
	Get(userID int) models.ScoreboardInputState
	Update(userID int, state models.ScoreboardInputState) models.ScoreboardInputState
	Swap(userID int) models.ScoreboardInputState
	Reset(userID int) models.ScoreboardInputState
	SelectMatch(userID int, key string, matchID models.PolymorphicID) (models.ScoreboardInputState, error)
	Publish(ctx context.Context, userID int) (*PublishResult, error)
}

type scoreboardService struct {
	users       repositories.UserRepository
	tournaments TournamentService
	uploader    storage.FileUploader
	logger      *slog.Logger

	mu     sync.Mutex
	states map[int]*models.ScoreboardInputState
	// published remembers how many commentators were last written per operator, so that
	// files for removed commentators can be cleaned up.
	published map[int]int
}

func NewScoreboardService(
	users repositories.UserRepository,
	tournaments TournamentService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ScoreboardService {
	return &scoreboardService{
		users:       users,
		tournaments: tournaments,
		uploader:    uploader,
		logger:      logger,
		states:      make(map[int]*models.ScoreboardInputState),
		published:   make(map[int]int),
	}
}

// state must be called with mu held.
func (s *scoreboardService) state(userID int) *models.ScoreboardInputState {
	st, ok := s.states[userID]
	if !ok {
		st = &models.ScoreboardInputState{Commentators: []models.Commentator{}}
		s.states[userID] = st
	}
	return st
}

func copyState(st *models.ScoreboardInputState) models.ScoreboardInputState {
	out := *st
	out.Commentators = append([]models.Commentator{}, st.Commentators...)
	return out
}

func (s *scoreboardService) Get(userID int) models.ScoreboardInputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state(userID))
}

func (s *scoreboardService) Update(userID int, state models.ScoreboardInputState) models.ScoreboardInputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := copyState(&state)
	s.states[userID] = &st
	return copyState(&st)
}

func (s *scoreboardService) Swap(userID int) models.ScoreboardInputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.SwapPlayers()
	return copyState(st)
}

func (s *scoreboardService) Reset(userID int) models.ScoreboardInputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.ResetScore()
	return copyState(st)
}

// SelectMatch fills both player names and the round name from a registered tournament's match
// and resets the scores. Unresolved sides are left blank.
func (s *scoreboardService) SelectMatch(userID int, key string, matchID models.PolymorphicID) (models.ScoreboardInputState, error) {
	entry, err := s.tournaments.Get(key)
	if err != nil {
		return models.ScoreboardInputState{}, err
	}
	match, ok := entry.View.MatchesByID[matchID]
	if !ok {
		return models.ScoreboardInputState{}, ErrMatchNotFound
	}
	p1, _ := entry.View.Player1(match)
	p2, _ := entry.View.Player2(match)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.TournamentURL = entry.View.Context.URL
	st.Player1 = models.PlayerInput{Name: p1.Name}
	st.Player2 = models.PlayerInput{Name: p2.Name}
	st.RoundName = match.RoundName
	return copyState(st), nil
}

// OutputFiles lists the overlay files for state in write order.
func OutputFiles(state models.ScoreboardInputState) []OutputFile {
	files := []OutputFile{
		{Name: "Player1.txt", Contents: state.Player1.Name},
		{Name: "Player1Score.txt", Contents: strconv.Itoa(state.Player1.Score)},
		{Name: "Player2.txt", Contents: state.Player2.Name},
		{Name: "Player2Score.txt", Contents: strconv.Itoa(state.Player2.Score)},
		{Name: "RoundName.txt", Contents: state.RoundName},
	}
	for i, c := range state.Commentators {
		n := i + 1
		files = append(files,
			OutputFile{Name: fmt.Sprintf("Commentator%d_Name.txt", n), Contents: c.Name},
			OutputFile{Name: fmt.Sprintf("Commentator%d_Handle.txt", n), Contents: c.Handle},
		)
	}
	return files
}

// OutputPrefix is the object key prefix of one operator's overlay files.
func OutputPrefix(login string) string {
	return "scoreboards/" + slug.Make(login) + "/"
}

func (s *scoreboardService) Publish(ctx context.Context, userID int) (*PublishResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserRepoError(err)
	}

	s.mu.Lock()
	state := copyState(s.state(userID))
	previous := s.published[userID]
	s.mu.Unlock()

	result := &PublishResult{Prefix: OutputPrefix(user.Login)}
	for _, f := range OutputFiles(state) {
		key := result.Prefix + f.Name
		if _, err := s.uploader.Upload(ctx, key, scoreboardContentType, strings.NewReader(f.Contents)); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		f.URL = s.uploader.GetPublicURL(key)
		result.Files = append(result.Files, f)
	}

	for n := len(state.Commentators) + 1; n <= previous; n++ {
		for _, name := range []string{fmt.Sprintf("Commentator%d_Name.txt", n), fmt.Sprintf("Commentator%d_Handle.txt", n)} {
			if err := s.uploader.Delete(ctx, result.Prefix+name); err != nil {
				s.logger.Warn("failed to remove stale commentator file", slog.String("file", name), slog.Any("error", err))
			}
		}
	}

	s.mu.Lock()
	s.published[userID] = len(state.Commentators)
	s.mu.Unlock()

	s.logger.Info("scoreboard published", slog.Int("user_id", userID), slog.String("prefix", result.Prefix), slog.Int("files", len(result.Files)))
	return result, nil
}
