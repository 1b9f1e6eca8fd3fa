package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Dosada05/scorebridge/models"
)

const DefaultStartGGAPIURL = "https://api.start.gg/gql/alpha"

const eventSetsQuery = `query EventSets($slug: String, $page: Int!, $perPage: Int!) {
  event(slug: $slug) {
    id
    name
    slug
    state
    sets(page: $page, perPage: $perPage, sortType: STANDARD) {
      pageInfo { total totalPages page perPage sortBy }
      nodes {
        id
        round
        fullRoundText
        state
        identifier
        slots { entrant { id name } }
      }
    }
  }
}`

const reportBracketSetMutation = `mutation ReportBracketSet($setId: ID!, $winnerId: ID, $gameData: [BBGameInput]) {
  reportBracketSet(setId: $setId, winnerId: $winnerId, gameData: $gameData) {
    id
    state
  }
}`

type StartGGClient interface {
	GetEventSetsPage(ctx context.Context, token, slug string, page, perPage int) (*models.StartGGEvent, error)
	ReportBracketSet(ctx context.Context, token string, report *models.StartGGReportBracketSet) error
}

type startGGClient struct {
	httpClient *http.Client
	apiURL     string
	logger     *slog.Logger
}

func NewStartGGClient(apiURL string, httpClient *http.Client, logger *slog.Logger) StartGGClient {
	if apiURL == "" {
		apiURL = DefaultStartGGAPIURL
	}
	return &startGGClient{httpClient: httpClient, apiURL: apiURL, logger: logger}
}

type graphQLResponse struct {
	Data   json.RawMessage       `json:"data"`
	Errors []models.GraphQLError `json:"errors"`
}

func (c *startGGClient) execute(ctx context.Context, token string, gql models.GraphQLRequest, out any) error {
	req, err := newJSONRequest(ctx, http.MethodPost, c.apiURL, gql)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var resp graphQLResponse
	if err := doJSON(c.httpClient, req, &resp); err != nil {
		return fmt.Errorf("start.gg %s: %w", gql.OperationName, err)
	}

	if len(resp.Errors) > 0 {
		messages := make(GraphQLErrors, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			messages = append(messages, e.Message)
		}
		c.logger.Warn("start.gg returned graphql errors",
			slog.String("operation", gql.OperationName),
			slog.Any("errors", []string(messages)),
		)
		return fmt.Errorf("start.gg %s: %w", gql.OperationName, messages)
	}

	if out == nil {
		return nil
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return fmt.Errorf("start.gg %s: %w: empty data", gql.OperationName, ErrDeserialization)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("start.gg %s: %w: %v", gql.OperationName, ErrDeserialization, err)
	}
	return nil
}

func (c *startGGClient) GetEventSetsPage(ctx context.Context, token, slug string, page, perPage int) (*models.StartGGEvent, error) {
	var data struct {
		Event *models.StartGGEvent `json:"event"`
	}
	err := c.execute(ctx, token, models.GraphQLRequest{
		Query:         eventSetsQuery,
		OperationName: "EventSets",
		Variables: map[string]any{
			"slug":    slug,
			"page":    page,
			"perPage": perPage,
		},
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Event == nil {
		return nil, fmt.Errorf("start.gg: %w: %s", ErrEventNotFound, slug)
	}
	return data.Event, nil
}

func (c *startGGClient) ReportBracketSet(ctx context.Context, token string, report *models.StartGGReportBracketSet) error {
	return c.execute(ctx, token, models.GraphQLRequest{
		Query:         reportBracketSetMutation,
		OperationName: "ReportBracketSet",
		Variables: map[string]any{
			"setId":    report.SetID,
			"winnerId": report.WinnerID,
			"gameData": report.GameData,
		},
	}, nil)
}
