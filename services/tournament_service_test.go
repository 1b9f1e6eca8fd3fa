package services

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Dosada05/scorebridge/brackets"
	"github.com/Dosada05/scorebridge/clients"
	"github.com/Dosada05/scorebridge/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weeklyURL = "https://challonge.com/weekly12"

func challongeFixture() *models.ChallongeTournament {
	return &models.ChallongeTournament{
		ID:             99,
		Name:           "Weekly 12",
		URL:            "weekly12",
		TournamentType: "double elimination",
		Participants: []models.ChallongeParticipantEnvelope{
			{Participant: models.ChallongeParticipant{ID: models.IntID(1), Name: "Zed"}},
			{Participant: models.ChallongeParticipant{ID: models.IntID(2), Name: "Amy"}},
		},
		Matches: []models.ChallongeMatchEnvelope{
			{Match: models.ChallongeMatch{ID: models.IntID(10), Player1ID: models.IntID(1), Player2ID: models.IntID(2), State: "open", Round: 1}},
		},
	}
}

type tournamentHarness struct {
	svc       TournamentService
	users     *fakeUserRepo
	owner     *models.User
	challonge *fakeChallonge
	startgg   *fakeStartGG
	oauth     *fakeOAuth
	store     *memStore
	hub       *recordingBroadcaster
}

func newTournamentHarness() *tournamentHarness {
	h := &tournamentHarness{
		owner: &models.User{
			Login:           "op",
			ChallongeAPIKey: "key",
			StartGGToken: &models.TokenInfo{
				AccessToken:  "token-1",
				RefreshToken: "refresh-1",
				ExpiresAt:    time.Now().Add(time.Hour),
			},
		},
		challonge: &fakeChallonge{tournament: challongeFixture()},
		startgg:   &fakeStartGG{pages: map[int]*models.StartGGEvent{}, pageErrs: map[int]error{}, failTokens: map[string]error{}},
		oauth: &fakeOAuth{next: func(int) (*models.TokenInfo, error) {
			return &models.TokenInfo{AccessToken: "token-2", ExpiresAt: time.Now().Add(time.Hour)}, nil
		}},
		store: newMemStore(),
		hub:   &recordingBroadcaster{},
	}
	h.users = newFakeUserRepo(h.owner)
	h.svc = NewTournamentService(TournamentServiceDeps{
		Users:       h.users,
		Challonge:   h.challonge,
		StartGG:     h.startgg,
		Tokens:      NewTokenRefreshService(h.users, h.oauth, discardLogger()),
		Snapshots:   h.store,
		Broadcaster: h.hub,
		Logger:      discardLogger(),
	})
	return h
}

func startGGPage(page, totalPages int, sets ...models.StartGGSet) *models.StartGGEvent {
	return &models.StartGGEvent{
		ID:   models.IntID(5),
		Name: "Melee Singles",
		Sets: models.StartGGSetConnection{
			PageInfo: models.StartGGPageInfo{Page: page, TotalPages: totalPages},
			Nodes:    sets,
		},
	}
}

func startGGSet(id int64, round int64, a, b string) models.StartGGSet {
	return models.StartGGSet{
		ID:    models.IntID(id),
		Round: round,
		State: models.StartGGSetOpen,
		Slots: []models.StartGGSetSlot{
			{Entrant: &models.StartGGEntrant{ID: models.ParseID(a), Name: "P" + a}},
			{Entrant: &models.StartGGEntrant{ID: models.ParseID(b), Name: "P" + b}},
		},
	}
}

func TestLoadChallongeRegistersView(t *testing.T) {
	h := newTournamentHarness()

	entry, err := h.svc.Load(t.Context(), h.owner.ID, weeklyURL)
	require.NoError(t, err)
	assert.Equal(t, "challonge-weekly12", entry.Key)
	assert.True(t, entry.View.Context.IsValid())
	require.Len(t, entry.View.Alphabetical, 2)
	assert.Equal(t, "Zed", entry.View.Alphabetical[1].Name)

	got, err := h.svc.Get("challonge-weekly12")
	require.NoError(t, err)
	assert.Same(t, entry, got)
	assert.Equal(t, []string{"challonge-weekly12"}, h.svc.Keys())

	_, cached, _ := h.store.Get("challonge-weekly12")
	assert.True(t, cached)
	assert.Equal(t, []string{brackets.MessageViewUpdated}, h.hub.Types())
}

func TestLoadSurfacesHostErrors(t *testing.T) {
	h := newTournamentHarness()
	h.challonge.getErr = &clients.HTTPStatusError{StatusCode: http.StatusNotFound}

	_, err := h.svc.Load(t.Context(), h.owner.ID, weeklyURL)
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "http status 404")
	assert.Empty(t, h.svc.Keys())
}

func TestLoadWithoutAPIKeyFails(t *testing.T) {
	h := newTournamentHarness()
	require.NoError(t, h.users.UpdateChallongeAPIKey(t.Context(), h.owner.ID, ""))

	_, err := h.svc.Load(t.Context(), h.owner.ID, weeklyURL)
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), ErrMissingHostCredential.Error())
}

func TestLoadRejectsUnknownHost(t *testing.T) {
	h := newTournamentHarness()
	_, err := h.svc.Load(t.Context(), h.owner.ID, "https://example.com/x")
	assert.ErrorIs(t, err, ErrUnknownHost)
}

func TestStartGGPaginationIsBestEffort(t *testing.T) {
	h := newTournamentHarness()
	h.startgg.pages[1] = startGGPage(1, 3, startGGSet(1, 1, "a", "b"))
	h.startgg.pageErrs[2] = errors.New("timeout")
	h.startgg.pages[3] = startGGPage(3, 3, startGGSet(3, 2, "c", "d"))

	entry, err := h.svc.Load(t.Context(), h.owner.ID, "https://start.gg/tournament/t/event/e")
	require.NoError(t, err)

	ctx := entry.View.Context
	assert.Len(t, ctx.Matches, 2)
	assert.Equal(t, []string{"page 2: timeout"}, ctx.Errors)
	assert.False(t, ctx.IsValid())

	// partial views are served but never cached
	_, cached, _ := h.store.Get(entry.Key)
	assert.False(t, cached)
}

func TestStartGGUnauthorizedRetriesOnceWithRefreshedToken(t *testing.T) {
	h := newTournamentHarness()
	h.startgg.pages[1] = startGGPage(1, 1, startGGSet(1, 1, "a", "b"))
	h.startgg.failTokens["token-1"] = &clients.HTTPStatusError{StatusCode: http.StatusUnauthorized}

	entry, err := h.svc.Load(t.Context(), h.owner.ID, "https://start.gg/tournament/t/event/e")
	require.NoError(t, err)
	assert.True(t, entry.View.Context.IsValid())
	assert.Equal(t, []string{"token-1", "token-2"}, h.startgg.tokens)
	assert.Equal(t, 1, h.oauth.Calls())
}

func TestReportScoreChallonge(t *testing.T) {
	h := newTournamentHarness()
	_, err := h.svc.Load(t.Context(), h.owner.ID, weeklyURL)
	require.NoError(t, err)

	res := h.svc.ReportScore(t.Context(), h.owner.ID, "challonge-weekly12", models.IntID(10), []models.ScoreEntry{
		{ParticipantID: models.IntID(2), Wins: 3},
		{ParticipantID: models.IntID(1), Wins: 1},
	})
	require.True(t, res.Success, res.Errors)
	require.Len(t, h.challonge.updates, 1)
	assert.Equal(t, "1-3", h.challonge.updates[0].Match.ScoresCSV)
	assert.Equal(t, models.IntID(2), h.challonge.updates[0].Match.WinnerID)

	assert.Contains(t, h.hub.Types(), brackets.MessageScoreReported)
	assert.Equal(t, 2, h.challonge.gets, "a successful report refreshes the tournament")
}

func TestReportScoreFailuresAreResults(t *testing.T) {
	h := newTournamentHarness()
	_, err := h.svc.Load(t.Context(), h.owner.ID, weeklyURL)
	require.NoError(t, err)

	res := h.svc.ReportScore(t.Context(), h.owner.ID, "challonge-weekly12", models.IntID(10), []models.ScoreEntry{{ParticipantID: models.IntID(1), Wins: 2}})
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "exactly two entries")
	assert.Empty(t, h.challonge.updates)

	res = h.svc.ReportScore(t.Context(), h.owner.ID, "challonge-weekly12", models.IntID(404), nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Errors[0], ErrMatchNotFound.Error())

	res = h.svc.ReportScore(t.Context(), h.owner.ID, "missing", models.IntID(10), nil)
	assert.False(t, res.Success)
	assert.Equal(t, []string{ErrTournamentNotLoaded.Error()}, res.Errors)

	h.challonge.updateErr = &clients.HTTPStatusError{StatusCode: 422, Messages: []string{"Score is invalid"}}
	res = h.svc.ReportScore(t.Context(), h.owner.ID, "challonge-weekly12", models.IntID(10), []models.ScoreEntry{
		{ParticipantID: models.IntID(1), Wins: 2},
		{ParticipantID: models.IntID(2), Wins: 0},
	})
	assert.False(t, res.Success)
	assert.Equal(t, []string{"Score is invalid"}, res.Errors)
}

func TestReportScoreStartGG(t *testing.T) {
	h := newTournamentHarness()
	h.startgg.pages[1] = startGGPage(1, 1, startGGSet(7, 1, "a", "b"))
	entry, err := h.svc.Load(t.Context(), h.owner.ID, "https://start.gg/tournament/t/event/e")
	require.NoError(t, err)

	res := h.svc.ReportScore(t.Context(), h.owner.ID, entry.Key, models.IntID(7), []models.ScoreEntry{
		{ParticipantID: models.ParseID("a"), Wins: 2},
		{ParticipantID: models.ParseID("b"), Wins: 1},
	})
	require.True(t, res.Success, res.Errors)
	require.Len(t, h.startgg.reports, 1)
	report := h.startgg.reports[0]
	assert.Equal(t, models.ParseID("a"), report.WinnerID)
	assert.Len(t, report.GameData, 3)
}

func TestUnwatchAndWarmFromCache(t *testing.T) {
	h := newTournamentHarness()
	_, err := h.svc.Load(t.Context(), h.owner.ID, weeklyURL)
	require.NoError(t, err)

	// a second service sharing the same store picks the snapshot up
	warm := NewTournamentService(TournamentServiceDeps{Users: h.users, Snapshots: h.store, Logger: discardLogger()})
	n, err := warm.WarmFromCache()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	entry, err := warm.Get("challonge-weekly12")
	require.NoError(t, err)
	assert.Equal(t, h.owner.ID, entry.OwnerID)
	assert.Len(t, entry.View.MatchesByID, 1)

	require.NoError(t, h.svc.Unwatch("challonge-weekly12"))
	assert.ErrorIs(t, h.svc.Unwatch("challonge-weekly12"), ErrTournamentNotLoaded)
	_, cached, _ := h.store.Get("challonge-weekly12")
	assert.False(t, cached)
}

func TestRefreshWatchedRefreshesEveryTournament(t *testing.T) {
	h := newTournamentHarness()
	h.startgg.pages[1] = startGGPage(1, 1, startGGSet(1, 1, "a", "b"))
	_, err := h.svc.Load(t.Context(), h.owner.ID, weeklyURL)
	require.NoError(t, err)
	_, err = h.svc.Load(t.Context(), h.owner.ID, "https://start.gg/tournament/t/event/e")
	require.NoError(t, err)

	h.challonge.tournament.Name = "Weekly 12 (renamed)"
	require.NoError(t, h.svc.RefreshWatched(t.Context()))

	entry, err := h.svc.Get("challonge-weekly12")
	require.NoError(t, err)
	assert.Equal(t, "Weekly 12 (renamed)", entry.View.Context.Name)
	assert.Equal(t, 2, h.challonge.gets)
}

func TestStartGGExpiredTokenRefreshesOnceAcrossPages(t *testing.T) {
	h := newTournamentHarness()
	require.NoError(t, h.users.UpdateStartGGToken(t.Context(), h.owner.ID, &models.TokenInfo{
		AccessToken:  "token-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}))
	h.oauth.singleUse = true
	h.oauth.next = func(int) (*models.TokenInfo, error) {
		return &models.TokenInfo{AccessToken: "token-2", RefreshToken: "refresh-2", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	h.startgg.pages[1] = startGGPage(1, 3, startGGSet(1, 1, "a", "b"))
	h.startgg.pages[2] = startGGPage(2, 3, startGGSet(2, 1, "c", "d"))
	h.startgg.pages[3] = startGGPage(3, 3, startGGSet(3, 2, "a", "c"))

	entry, err := h.svc.Load(t.Context(), h.owner.ID, "https://start.gg/tournament/t/event/e")
	require.NoError(t, err)
	assert.Empty(t, entry.View.Context.Errors)
	assert.Len(t, entry.View.Context.Matches, 3)
	assert.Equal(t, []string{"token-2", "token-2", "token-2"}, h.startgg.tokens)
	assert.Equal(t, []string{"refresh-1"}, h.oauth.UsedRefreshTokens())

	stored, err := h.users.GetByID(t.Context(), h.owner.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.StartGGToken)
	assert.Equal(t, "refresh-2", stored.StartGGToken.RefreshToken)
}

func TestStartGGUnauthorizedOnLaterPageKeepsRotatedToken(t *testing.T) {
	h := newTournamentHarness()
	h.oauth.singleUse = true
	h.oauth.next = func(int) (*models.TokenInfo, error) {
		return &models.TokenInfo{AccessToken: "token-2", RefreshToken: "refresh-2", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	h.startgg.pages[1] = startGGPage(1, 2, startGGSet(1, 1, "a", "b"))
	h.startgg.pages[2] = startGGPage(2, 2, startGGSet(2, 1, "c", "d"))
	h.startgg.failTokens["token-1"] = &clients.HTTPStatusError{StatusCode: http.StatusUnauthorized}

	entry, err := h.svc.Load(t.Context(), h.owner.ID, "https://start.gg/tournament/t/event/e")
	require.NoError(t, err)
	assert.Empty(t, entry.View.Context.Errors)
	assert.Equal(t, []string{"token-1", "token-2", "token-2"}, h.startgg.tokens)
	assert.Equal(t, []string{"refresh-1"}, h.oauth.UsedRefreshTokens())
}

func TestRefreshFinishingAfterUnwatchIsDropped(t *testing.T) {
	h := newTournamentHarness()
	_, err := h.svc.Load(t.Context(), h.owner.ID, weeklyURL)
	require.NoError(t, err)

	h.challonge.entered = make(chan struct{})
	h.challonge.block = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Refresh(t.Context(), "challonge-weekly12")
		done <- err
	}()

	<-h.challonge.entered
	require.NoError(t, h.svc.Unwatch("challonge-weekly12"))
	close(h.challonge.block)

	assert.ErrorIs(t, <-done, ErrTournamentNotLoaded)
	assert.Empty(t, h.svc.Keys())
	_, cached, _ := h.store.Get("challonge-weekly12")
	assert.False(t, cached)
}

func TestSummaryCountsOnlyPlayableMatches(t *testing.T) {
	h := newTournamentHarness()
	h.challonge.tournament.Matches = append(h.challonge.tournament.Matches,
		models.ChallongeMatchEnvelope{Match: models.ChallongeMatch{ID: models.IntID(11), Player1ID: models.IntID(1), State: "pending", Round: 2}},
	)

	entry, err := h.svc.Load(t.Context(), h.owner.ID, weeklyURL)
	require.NoError(t, err)

	summary := entry.Summary()
	assert.Equal(t, 2, summary.Matches)
	assert.Equal(t, 1, summary.PendingMatches)
	assert.Len(t, NewQueryService().GetPendingMatches(entry.View), summary.PendingMatches)
}
