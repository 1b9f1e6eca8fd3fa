package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/scorebridge/clients"
	"github.com/Dosada05/scorebridge/models"
	"github.com/Dosada05/scorebridge/repositories"
	"golang.org/x/sync/singleflight"
)

const (
	// accessTokenSkew refreshes a token slightly before it actually expires.
	accessTokenSkew     = time.Minute
	tokenRefreshTimeout = 30 * time.Second
)

// TokenRefreshService hands out usable start.gg access tokens. At most one refresh per operator
// is in flight at any time; concurrent callers wait for it and share its outcome.
type TokenRefreshService interface {
	AccessToken(ctx context.Context, user *models.User) (string, error)
	ForceRefresh(ctx context.Context, user *models.User) (*models.TokenInfo, error)
	RefreshExpiring(ctx context.Context, within time.Duration) (int, error)
}

type tokenRefreshService struct {
	users  repositories.UserRepository
	oauth  clients.OAuthClient
	group  singleflight.Group
	logger *slog.Logger
	now    func() time.Time
}

func NewTokenRefreshService(users repositories.UserRepository, oauth clients.OAuthClient, logger *slog.Logger) TokenRefreshService {
	return &tokenRefreshService{
		users:  users,
		oauth:  oauth,
		logger: logger,
		now:    time.Now,
	}
}

func (s *tokenRefreshService) AccessToken(ctx context.Context, user *models.User) (string, error) {
	token := user.StartGGToken
	if token == nil || token.AccessToken == "" {
		return "", ErrMissingHostCredential
	}
	if !token.ExpiresWithin(s.now(), accessTokenSkew) {
		return token.AccessToken, nil
	}

	refreshed, err := s.ForceRefresh(ctx, user)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// ForceRefresh exchanges the operator's refresh token for a new token set. The in-flight entry
// is keyed by the operator's client token and dropped once the call finishes. A caller holding a
// token that has already been rotated gets the stored token set instead, because start.gg only
// accepts each refresh token once.
func (s *tokenRefreshService) ForceRefresh(ctx context.Context, user *models.User) (*models.TokenInfo, error) {
	if user.StartGGToken == nil || user.StartGGToken.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no start.gg refresh token", ErrMissingHostCredential)
	}

	key := user.ClientToken.String()
	current := *user.StartGGToken
	userID := user.ID

	ch := s.group.DoChan(key, func() (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("token refresh panicked: %v", r)
			}
		}()

		// The shared call outlives any single waiter's cancellation.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tokenRefreshTimeout)
		defer cancel()
		if stored, ok := s.rotatedSince(callCtx, userID, current); ok {
			return stored, nil
		}
		return s.refresh(callCtx, userID, current)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		info := *res.Val.(*models.TokenInfo)
		return &info, nil
	}
}

// rotatedSince returns the stored token set when another refresh already replaced current and
// the stored access token is still usable.
func (s *tokenRefreshService) rotatedSince(ctx context.Context, userID int, current models.TokenInfo) (*models.TokenInfo, bool) {
	stored, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to re-read start.gg token before refresh", slog.Int("user_id", userID), slog.Any("error", err))
		return nil, false
	}
	tok := stored.StartGGToken
	if tok == nil || tok.AccessToken == "" || tok.AccessToken == current.AccessToken {
		return nil, false
	}
	if tok.ExpiresWithin(s.now(), accessTokenSkew) {
		return nil, false
	}
	return tok, true
}

func (s *tokenRefreshService) refresh(ctx context.Context, userID int, current models.TokenInfo) (*models.TokenInfo, error) {
	info, err := s.oauth.RefreshToken(ctx, current.RefreshToken)
	if err != nil {
		switch clients.StatusCode(err) {
		case http.StatusBadRequest, http.StatusUnauthorized:
			if clearErr := s.users.UpdateStartGGToken(ctx, userID, nil); clearErr != nil {
				s.logger.Error("failed to clear revoked start.gg token",
					slog.Int("user_id", userID), slog.Any("error", clearErr))
			}
			s.logger.Warn("start.gg refresh token rejected, token cleared", slog.Int("user_id", userID))
			return nil, fmt.Errorf("%w: %v", ErrTokenRevoked, err)
		}
		return nil, fmt.Errorf("refresh start.gg token: %w", err)
	}

	if info.RefreshToken == "" {
		info.RefreshToken = current.RefreshToken
	}
	if info.Scope == "" {
		info.Scope = current.Scope
	}
	if err := s.users.UpdateStartGGToken(ctx, userID, info); err != nil {
		return nil, fmt.Errorf("store refreshed start.gg token: %w", err)
	}

	s.logger.Info("start.gg token refreshed", slog.Int("user_id", userID), slog.Time("expires_at", info.ExpiresAt))
	return info, nil
}

// RefreshExpiring refreshes every stored token that expires within the given window and
// returns how many were refreshed.
func (s *tokenRefreshService) RefreshExpiring(ctx context.Context, within time.Duration) (int, error) {
	users, err := s.users.ListWithStartGGTokens(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users with start.gg tokens: %w", err)
	}

	var (
		refreshed int
		errs      []error
	)
	now := s.now()
	for i := range users {
		user := &users[i]
		if user.StartGGToken == nil || user.StartGGToken.RefreshToken == "" || !user.StartGGToken.ExpiresWithin(now, within) {
			continue
		}
		if _, err := s.ForceRefresh(ctx, user); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", user.ID, err))
			continue
		}
		refreshed++
	}
	return refreshed, errors.Join(errs...)
}
