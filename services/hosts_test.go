package services

import (
	"testing"

	"github.com/Dosada05/scorebridge/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTournamentURL(t *testing.T) {
	cases := []struct {
		raw  string
		host models.Host
		id   string
		key  string
	}{
		{"https://challonge.com/weekly12", models.HostChallonge, "weekly12", "challonge-weekly12"},
		{"challonge.com/fr/weekly12/", models.HostChallonge, "weekly12", "challonge-weekly12"},
		{"https://myorg.challonge.com/weekly12", models.HostChallonge, "myorg-weekly12", "challonge-myorg-weekly12"},
		{"https://www.start.gg/tournament/genesis-9/event/melee-singles/overview", models.HostStartGG,
			"tournament/genesis-9/event/melee-singles", "startgg-tournament-genesis-9-event-melee-singles"},
		{"https://smash.gg/tournament/x/event/y", models.HostStartGG, "tournament/x/event/y", "startgg-tournament-x-event-y"},
	}
	for _, tc := range cases {
		ref, err := ParseTournamentURL(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.host, ref.Host, tc.raw)
		assert.Equal(t, tc.id, ref.TournamentID, tc.raw)
		assert.Equal(t, tc.key, ref.Key(), tc.raw)
	}
}

func TestParseTournamentURLErrors(t *testing.T) {
	_, err := ParseTournamentURL("https://example.com/bracket")
	assert.ErrorIs(t, err, ErrUnknownHost)

	_, err = ParseTournamentURL("   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseTournamentURL("https://start.gg/tournament/genesis-9/details")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseTournamentURL("https://challonge.com/")
	assert.ErrorIs(t, err, ErrValidation)
}
