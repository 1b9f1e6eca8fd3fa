package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/scorebridge/brackets"
	"github.com/Dosada05/scorebridge/cache"
	"github.com/Dosada05/scorebridge/clients"
	"github.com/Dosada05/scorebridge/models"
	"github.com/Dosada05/scorebridge/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	startGGSetsPerPage     = 40
	defaultRefreshParallel = 4
)

// Broadcaster delivers live updates to websocket rooms.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// TournamentEntry is one registered tournament. Entries are replaced whole on every refresh and
// never mutated after they are published.
type TournamentEntry struct {
	Key       string
	Ref       TournamentRef
	OwnerID   int
	View      *models.TournamentView
	UpdatedAt time.Time
}

// TournamentSummary is the payload of VIEW_UPDATED messages and of the list endpoints.
type TournamentSummary struct {
	Key             string                 `json:"key"`
	Host            models.Host            `json:"host"`
	URL             string                 `json:"url"`
	Name            string                 `json:"name"`
	EliminationType models.EliminationType `json:"elimination_type"`
	Participants    int                    `json:"participants"`
	Matches         int                    `json:"matches"`
	PendingMatches  int                    `json:"pending_matches"`
	Errors          []string               `json:"errors,omitempty"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func (e *TournamentEntry) Summary() TournamentSummary {
	ctx := e.View.Context
	pending := 0
	for _, m := range e.View.Matches() {
		if isPendingMatch(e.View, m) {
			pending++
		}
	}
	return TournamentSummary{
		Key:             e.Key,
		Host:            ctx.Host,
		URL:             ctx.URL,
		Name:            ctx.Name,
		EliminationType: ctx.EliminationType,
		Participants:    len(ctx.Participants),
		Matches:         len(ctx.Matches),
		PendingMatches:  pending,
		Errors:          ctx.Errors,
		UpdatedAt:       e.UpdatedAt,
	}
}

// TournamentService fetches tournaments from their hosts, keeps the latest view of each one in
// a registry and reports scores back.
type TournamentService interface {
	Load(ctx context.Context, userID int, rawURL string) (*TournamentEntry, error)
	Refresh(ctx context.Context, key string) (*TournamentEntry, error)
	RefreshWatched(ctx context.Context) error
	Unwatch(key string) error
	Keys() []string
	Get(key string) (*TournamentEntry, error)
	ReportScore(ctx context.Context, userID int, key string, matchID models.PolymorphicID, scores []models.ScoreEntry) models.RequestResult
	WarmFromCache() (int, error)
}

type TournamentServiceDeps struct {
	Users       repositories.UserRepository
	Challonge   clients.ChallongeClient
	StartGG     clients.StartGGClient
	Tokens      TokenRefreshService
	Publisher   ScorePublisher
	Snapshots   cache.Store
	Broadcaster Broadcaster
	Logger      *slog.Logger
	// RefreshParallelism bounds how many tournaments RefreshWatched fetches at once.
	RefreshParallelism int
}

type tournamentService struct {
	TournamentServiceDeps

	mu       sync.RWMutex
	registry map[string]*TournamentEntry
	now      func() time.Time
}

func NewTournamentService(deps TournamentServiceDeps) TournamentService {
	if deps.RefreshParallelism <= 0 {
		deps.RefreshParallelism = defaultRefreshParallel
	}
	if deps.Publisher == nil {
		deps.Publisher = NewScorePublisher()
	}
	return &tournamentService{
		TournamentServiceDeps: deps,
		registry:              make(map[string]*TournamentEntry),
		now:                   time.Now,
	}
}

func (s *tournamentService) Load(ctx context.Context, userID int, rawURL string) (*TournamentEntry, error) {
	ref, err := ParseTournamentURL(rawURL)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID, ref, false)
}

func (s *tournamentService) Refresh(ctx context.Context, key string) (*TournamentEntry, error) {
	current, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, current.OwnerID, current.Ref, true)
}

// load fetches ref and publishes the result. A refresh only publishes while the key is still
// registered, so an Unwatch that lands during the fetch wins.
func (s *tournamentService) load(ctx context.Context, ownerID int, ref TournamentRef, refreshing bool) (*TournamentEntry, error) {
	owner, err := s.owner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	tctx := s.fetch(ctx, owner, ref)
	if tctx.Challonge == nil && tctx.StartGG == nil {
		s.Logger.Warn("tournament fetch failed",
			slog.String("key", ref.Key()), slog.Any("errors", tctx.Errors))
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, strings.Join(tctx.Errors, "; "))
	}

	entry := &TournamentEntry{
		Key:       ref.Key(),
		Ref:       ref,
		OwnerID:   ownerID,
		View:      brackets.BuildView(tctx),
		UpdatedAt: s.now(),
	}

	// The snapshot is written under mu so that it cannot outlive a concurrent Unwatch.
	s.mu.Lock()
	if _, registered := s.registry[entry.Key]; refreshing && !registered {
		s.mu.Unlock()
		s.Logger.Info("dropping refresh of unwatched tournament", slog.String("key", entry.Key))
		return nil, ErrTournamentNotLoaded
	}
	s.registry[entry.Key] = entry
	if tctx.IsValid() && s.Snapshots != nil {
		snapshot := &cache.Snapshot{Key: entry.Key, OwnerID: ownerID, SavedAt: entry.UpdatedAt, Context: tctx}
		if err := s.Snapshots.Put(snapshot); err != nil {
			s.Logger.Error("failed to store tournament snapshot", slog.String("key", entry.Key), slog.Any("error", err))
		}
	}
	s.mu.Unlock()

	s.broadcast(entry.Key, brackets.MessageViewUpdated, entry.Summary())
	s.Logger.Info("tournament loaded",
		slog.String("key", entry.Key),
		slog.Int("participants", len(tctx.Participants)),
		slog.Int("matches", len(tctx.Matches)),
		slog.Int("errors", len(tctx.Errors)))
	return entry, nil
}

func (s *tournamentService) owner(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return user, nil
}

// fetch never returns nil and never panics; every failure ends up in the context's error list.
func (s *tournamentService) fetch(ctx context.Context, owner *models.User, ref TournamentRef) (tctx *models.TournamentContext) {
	defer func() {
		if r := recover(); r != nil {
			if tctx == nil {
				tctx = emptyContext(ref)
			}
			tctx.AddError(fmt.Sprintf("unexpected failure while fetching %s: %v", ref.URL, r))
		}
	}()

	switch ref.Host {
	case models.HostChallonge:
		return s.fetchChallonge(ctx, owner, ref)
	case models.HostStartGG:
		return s.fetchStartGG(ctx, owner, ref)
	default:
		tctx = emptyContext(ref)
		tctx.AddError(ErrUnknownHost.Error())
		return tctx
	}
}

func emptyContext(ref TournamentRef) *models.TournamentContext {
	return &models.TournamentContext{Host: ref.Host, URL: ref.URL, TournamentID: ref.TournamentID}
}

func (s *tournamentService) fetchChallonge(ctx context.Context, owner *models.User, ref TournamentRef) *models.TournamentContext {
	if owner.ChallongeAPIKey == "" {
		tctx := emptyContext(ref)
		tctx.AddError(ErrMissingHostCredential.Error())
		return tctx
	}

	t, err := s.Challonge.GetTournament(ctx, owner.ChallongeAPIKey, ref.TournamentID)
	if err != nil {
		tctx := emptyContext(ref)
		for _, msg := range errorMessages(err) {
			tctx.AddError(msg)
		}
		return tctx
	}
	return brackets.NewChallongeContext(t, ref.URL, ref.TournamentID)
}

// fetchStartGG reads page 1 and then every remaining page in order. A failed later page is
// recorded and skipped; the sets that did arrive are kept.
func (s *tournamentService) fetchStartGG(ctx context.Context, owner *models.User, ref TournamentRef) *models.TournamentContext {
	var event *models.StartGGEvent
	err := s.withStartGGToken(ctx, owner, func(token string) error {
		var err error
		event, err = s.StartGG.GetEventSetsPage(ctx, token, ref.TournamentID, 1, startGGSetsPerPage)
		return err
	})
	if err != nil {
		tctx := emptyContext(ref)
		for _, msg := range errorMessages(err) {
			tctx.AddError(msg)
		}
		return tctx
	}

	var pageErrors []string
	for page := 2; page <= event.Sets.PageInfo.TotalPages; page++ {
		var next *models.StartGGEvent
		err := s.withStartGGToken(ctx, owner, func(token string) error {
			var err error
			next, err = s.StartGG.GetEventSetsPage(ctx, token, ref.TournamentID, page, startGGSetsPerPage)
			return err
		})
		if err != nil {
			for _, msg := range errorMessages(err) {
				pageErrors = append(pageErrors, fmt.Sprintf("page %d: %s", page, msg))
			}
			continue
		}
		event.Sets.Nodes = append(event.Sets.Nodes, next.Sets.Nodes...)
	}

	tctx := brackets.NewStartGGContext(event, ref.URL, ref.TournamentID)
	for _, msg := range pageErrors {
		tctx.AddError(msg)
	}
	return tctx
}

// withStartGGToken runs call with a current access token. A 401 forces one token refresh and
// one retry.
func (s *tournamentService) withStartGGToken(ctx context.Context, owner *models.User, call func(token string) error) error {
	token, err := s.Tokens.AccessToken(ctx, owner)
	if err != nil {
		return err
	}

	err = call(token)
	if clients.StatusCode(err) != http.StatusUnauthorized {
		return err
	}

	refreshed, refreshErr := s.Tokens.ForceRefresh(ctx, owner)
	if refreshErr != nil {
		return errors.Join(err, refreshErr)
	}
	// owner is private to this fetch; later pages start from the new token set
	owner.StartGGToken = refreshed
	return call(refreshed.AccessToken)
}

func (s *tournamentService) RefreshWatched(ctx context.Context) error {
	keys := s.Keys()
	if len(keys) == 0 {
		return nil
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(s.RefreshParallelism)
	for _, key := range keys {
		g.Go(func() error {
			if _, err := s.Refresh(ctx, key); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (s *tournamentService) Unwatch(key string) error {
	s.mu.Lock()
	_, ok := s.registry[key]
	if ok {
		delete(s.registry, key)
		if s.Snapshots != nil {
			if err := s.Snapshots.Delete(key); err != nil {
				s.Logger.Error("failed to delete tournament snapshot", slog.String("key", key), slog.Any("error", err))
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		return ErrTournamentNotLoaded
	}

	s.broadcast(key, brackets.MessageUnwatched, map[string]string{"key": key})
	return nil
}

func (s *tournamentService) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.registry))
	for key := range s.registry {
		keys = append(keys, key)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

func (s *tournamentService) Get(key string) (*TournamentEntry, error) {
	s.mu.RLock()
	entry, ok := s.registry[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrTournamentNotLoaded
	}
	return entry, nil
}

type scoreReportedPayload struct {
	MatchID models.PolymorphicID `json:"match_id"`
	Scores  []models.ScoreEntry  `json:"scores"`
}

// ReportScore translates a score report for the tournament's host and sends it. Validation and
// host failures come back as error strings in the result, never as a panic.
func (s *tournamentService) ReportScore(ctx context.Context, userID int, key string, matchID models.PolymorphicID, scores []models.ScoreEntry) (result models.RequestResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.FailedResult(fmt.Sprintf("unexpected failure while reporting score: %v", r))
		}
	}()

	for _, score := range scores {
		if score.Wins < 0 {
			return models.FailedResult(ErrScoreNegative.Error())
		}
	}

	entry, err := s.Get(key)
	if err != nil {
		return models.FailedResult(err.Error())
	}
	match, ok := entry.View.MatchesByID[matchID]
	if !ok {
		return models.FailedResult(fmt.Sprintf("%s: %s", ErrMatchNotFound, matchID))
	}
	user, err := s.owner(ctx, userID)
	if err != nil {
		return models.FailedResult(err.Error())
	}

	switch entry.Ref.Host {
	case models.HostChallonge:
		err = s.reportChallonge(ctx, user, entry, match, scores)
	case models.HostStartGG:
		err = s.reportStartGG(ctx, user, match, scores)
	default:
		err = ErrUnknownHost
	}
	if err != nil {
		s.Logger.Warn("score report failed",
			slog.String("key", key), slog.String("match_id", matchID.String()), slog.Any("error", err))
		return models.FailedResult(errorMessages(err)...)
	}

	s.broadcast(key, brackets.MessageScoreReported, scoreReportedPayload{MatchID: matchID, Scores: scores})
	if _, err := s.Refresh(ctx, key); err != nil {
		s.Logger.Warn("refresh after score report failed", slog.String("key", key), slog.Any("error", err))
	}
	return models.RequestResult{Success: true, Errors: []string{}}
}

func (s *tournamentService) reportChallonge(ctx context.Context, user *models.User, entry *TournamentEntry, match models.Match, scores []models.ScoreEntry) error {
	body, err := s.Publisher.BuildChallongeUpdate(match, scores)
	if err != nil {
		return err
	}
	if user.ChallongeAPIKey == "" {
		return ErrMissingHostCredential
	}
	return s.Challonge.UpdateMatch(ctx, user.ChallongeAPIKey, entry.Ref.TournamentID, match.ID, body)
}

func (s *tournamentService) reportStartGG(ctx context.Context, user *models.User, match models.Match, scores []models.ScoreEntry) error {
	report, err := s.Publisher.BuildStartGGReport(match, scores)
	if err != nil {
		return err
	}
	return s.withStartGGToken(ctx, user, func(token string) error {
		return s.StartGG.ReportBracketSet(ctx, token, report)
	})
}

// WarmFromCache registers every stored snapshot so that views are available before the first
// scheduled refresh runs.
func (s *tournamentService) WarmFromCache() (int, error) {
	if s.Snapshots == nil {
		return 0, nil
	}

	warmed := 0
	err := s.Snapshots.ForEach(func(snapshot *cache.Snapshot) error {
		if snapshot.Context == nil {
			return nil
		}
		ref, err := ParseTournamentURL(snapshot.Context.URL)
		if err != nil {
			s.Logger.Warn("skipping snapshot with unusable url", slog.String("key", snapshot.Key), slog.Any("error", err))
			return nil
		}

		entry := &TournamentEntry{
			Key:       snapshot.Key,
			Ref:       ref,
			OwnerID:   snapshot.OwnerID,
			View:      brackets.BuildView(snapshot.Context),
			UpdatedAt: snapshot.SavedAt,
		}
		s.mu.Lock()
		if _, exists := s.registry[entry.Key]; !exists {
			s.registry[entry.Key] = entry
			warmed++
		}
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return warmed, fmt.Errorf("warm registry from snapshots: %w", err)
	}
	return warmed, nil
}

func (s *tournamentService) broadcast(key, msgType string, payload interface{}) {
	if s.Broadcaster == nil {
		return
	}
	room := brackets.TournamentRoom(key)
	s.Broadcaster.BroadcastToRoom(room, brackets.WebSocketMessage{Type: msgType, Payload: payload, RoomID: room})
}

// errorMessages flattens err into the strings reported to the operator. Host-provided messages
// are preferred over the generic status text.
func errorMessages(err error) []string {
	var statusErr *clients.HTTPStatusError
	if errors.As(err, &statusErr) && len(statusErr.Messages) > 0 {
		return append([]string(nil), statusErr.Messages...)
	}
	var gqlErrs clients.GraphQLErrors
	if errors.As(err, &gqlErrs) {
		return append([]string(nil), gqlErrs...)
	}
	return []string{err.Error()}
}
