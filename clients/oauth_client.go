package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/scorebridge/models"
)

const DefaultStartGGTokenURL = "https://api.start.gg/oauth/refresh"

type OAuthClient interface {
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenInfo, error)
}

type OAuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

type oauthClient struct {
	httpClient *http.Client
	cfg        OAuthConfig
	now        func() time.Time
}

func NewOAuthClient(cfg OAuthConfig, httpClient *http.Client) OAuthClient {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultStartGGTokenURL
	}
	return &oauthClient{httpClient: httpClient, cfg: cfg, now: time.Now}
}

type refreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope,omitempty"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// scopeList accepts scope either as a space separated string or as an array.
type scopeList string

func (s *scopeList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = scopeList(strings.Join(list, " "))
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = scopeList(single)
	return nil
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	Scope        scopeList `json:"scope"`
}

func (c *oauthClient) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenInfo, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, c.cfg.TokenURL, refreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
		Scope:        strings.Join(c.cfg.Scopes, " "),
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
	})
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := doJSON(c.httpClient, req, &resp); err != nil {
		return nil, fmt.Errorf("token refresh: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("token refresh: %w: no access_token in response", ErrDeserialization)
	}

	info := &models.TokenInfo{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    c.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		Scope:        string(resp.Scope),
	}
	if info.RefreshToken == "" {
		info.RefreshToken = refreshToken
	}
	return info, nil
}
