package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/scorebridge/models"
	"github.com/Dosada05/scorebridge/repositories"
	"github.com/Dosada05/scorebridge/utils"
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input models.Credentials) (*models.User, error)
	GetUser(ctx context.Context, userID int) (*models.User, error)
	UpdateHostCredentials(ctx context.Context, userID int, input HostCredentialsInput) (*models.User, error)
}

type RegisterInput struct {
	Login           string `json:"login"`
	Password        string `json:"password"`
	ChallongeAPIKey string `json:"challonge_api_key,omitempty"`
}

// HostCredentialsInput changes only the fields that are set. ClearStartGGToken wins over
// StartGGToken.
type HostCredentialsInput struct {
	ChallongeAPIKey   *string           `json:"challonge_api_key,omitempty"`
	StartGGToken      *models.TokenInfo `json:"startgg_token,omitempty"`
	ClearStartGGToken bool              `json:"clear_startgg_token,omitempty"`
}

type authService struct {
	userRepo repositories.UserRepository
	now      func() time.Time
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	login := strings.TrimSpace(input.Login)
	if login == "" {
		return nil, ErrLoginRequired
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Login:           login,
		PasswordHash:    hashedPassword,
		ChallongeAPIKey: strings.TrimSpace(input.ChallongeAPIKey),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserLoginConflict) {
			return nil, ErrUserLoginConflict
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, input models.Credentials) (*models.User, error) {
	user, err := s.userRepo.GetByLogin(ctx, strings.TrimSpace(input.Login))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by login: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}

	now := s.now()
	if err := s.userRepo.TouchLastAuthed(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login time: %w", err)
	}
	user.LastAuthedAt = &now
	user.PasswordHash = ""

	return user, nil
}

func (s *authService) GetUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) UpdateHostCredentials(ctx context.Context, userID int, input HostCredentialsInput) (*models.User, error) {
	if input.ChallongeAPIKey != nil {
		if err := s.userRepo.UpdateChallongeAPIKey(ctx, userID, strings.TrimSpace(*input.ChallongeAPIKey)); err != nil {
			return nil, mapUserRepoError(err)
		}
	}

	switch {
	case input.ClearStartGGToken:
		if err := s.userRepo.UpdateStartGGToken(ctx, userID, nil); err != nil {
			return nil, mapUserRepoError(err)
		}
	case input.StartGGToken != nil:
		if input.StartGGToken.AccessToken == "" {
			return nil, fmt.Errorf("%w: start.gg access token is required", ErrValidation)
		}
		if err := s.userRepo.UpdateStartGGToken(ctx, userID, input.StartGGToken); err != nil {
			return nil, mapUserRepoError(err)
		}
	}

	return s.GetUser(ctx, userID)
}

func mapUserRepoError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("failed to update user: %w", err)
}
