package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Dosada05/scorebridge/models"
)

const DefaultChallongeBaseURL = "https://api.challonge.com/v1"

type ChallongeClient interface {
	GetTournament(ctx context.Context, apiKey, tournamentID string) (*models.ChallongeTournament, error)
	UpdateMatch(ctx context.Context, apiKey, tournamentID string, matchID models.PolymorphicID, body *models.ChallongeMatchUpdate) error
}

type challongeClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func NewChallongeClient(baseURL string, httpClient *http.Client, logger *slog.Logger) ChallongeClient {
	if baseURL == "" {
		baseURL = DefaultChallongeBaseURL
	}
	return &challongeClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

func (c *challongeClient) endpoint(apiKey string, params url.Values, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", apiKey)
	return c.baseURL + "/" + strings.Join(escaped, "/") + ".json?" + params.Encode()
}

// GetTournament fetches the tournament with its participants and matches in one request.
func (c *challongeClient) GetTournament(ctx context.Context, apiKey, tournamentID string) (*models.ChallongeTournament, error) {
	params := url.Values{}
	params.Set("include_participants", "1")
	params.Set("include_matches", "1")

	req, err := newJSONRequest(ctx, http.MethodGet, c.endpoint(apiKey, params, "tournaments", tournamentID), nil)
	if err != nil {
		return nil, err
	}

	var envelope models.ChallongeTournamentEnvelope
	if err := doJSON(c.httpClient, req, &envelope); err != nil {
		return nil, c.describe(err, "get tournament", tournamentID)
	}
	return &envelope.Tournament, nil
}

func (c *challongeClient) UpdateMatch(ctx context.Context, apiKey, tournamentID string, matchID models.PolymorphicID, body *models.ChallongeMatchUpdate) error {
	target := c.endpoint(apiKey, nil, "tournaments", tournamentID, "matches", matchID.String())
	req, err := newJSONRequest(ctx, http.MethodPut, target, body)
	if err != nil {
		return err
	}

	if err := doJSON(c.httpClient, req, nil); err != nil {
		return c.describe(err, "update match", tournamentID)
	}
	return nil
}

// describe unpacks a 422 validation body so its messages reach the caller and the log.
func (c *challongeClient) describe(err error, op, tournamentID string) error {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnprocessableEntity {
		var body models.ChallongeErrorResponse
		if jsonErr := json.Unmarshal(statusErr.Body, &body); jsonErr == nil {
			statusErr.Messages = body.Errors
		}
		c.logger.Warn("challonge rejected request",
			slog.String("op", op),
			slog.String("tournament_id", tournamentID),
			slog.Any("errors", statusErr.Messages),
		)
	}
	return fmt.Errorf("challonge %s: %w", op, err)
}
