package cache

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dosada05/scorebridge/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "nested", "snapshots.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStorePutGetDelete(t *testing.T) {
	store := openStore(t)

	snap := &Snapshot{
		Key:     "challonge-weekly12",
		OwnerID: 3,
		SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Context: &models.TournamentContext{
			Host:            models.HostChallonge,
			EliminationType: models.SingleElimination,
			MaxRoundWinners: 4,
			Participants:    []models.Participant{{ID: models.ParseID("abc"), Name: "Zain"}},
			Matches:         []models.Match{{ID: models.IntID(9), Player1ID: models.ParseID("abc"), Status: models.MatchStatusOpen}},
			Challonge:       &models.ChallongeTournament{ID: 77, Name: "Weekly 12"},
		},
	}
	require.NoError(t, store.Put(snap))

	got, ok, err := store.Get("challonge-weekly12")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap.OwnerID, got.OwnerID)
	assert.True(t, snap.SavedAt.Equal(got.SavedAt))
	assert.Equal(t, models.SingleElimination, got.Context.EliminationType)
	assert.Equal(t, models.MatchStatusOpen, got.Context.Matches[0].Status)
	assert.Equal(t, models.ParseID("abc"), got.Context.Participants[0].ID)
	assert.True(t, got.Context.IsValid())

	require.NoError(t, store.Delete("challonge-weekly12"))
	_, ok, err = store.Get("challonge-weekly12")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltStoreForEach(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Put(&Snapshot{Key: "a", Context: &models.TournamentContext{}}))
	require.NoError(t, store.Put(&Snapshot{Key: "b", Context: &models.TournamentContext{}}))

	var keys []string
	require.NoError(t, store.ForEach(func(s *Snapshot) error {
		keys = append(keys, s.Key)
		return nil
	}))
	assert.Equal(t, []string{"a", "b"}, keys)
}
