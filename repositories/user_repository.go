package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/scorebridge/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserLoginConflict = errors.New("user login conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByClientToken(ctx context.Context, token uuid.UUID) (*models.User, error)
	UpdateChallongeAPIKey(ctx context.Context, id int, apiKey string) error
	// UpdateStartGGToken replaces the stored token set; nil clears it.
	UpdateStartGGToken(ctx context.Context, id int, token *models.TokenInfo) error
	TouchLastAuthed(ctx context.Context, id int, at time.Time) error
	ListWithStartGGTokens(ctx context.Context) ([]models.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `
	id, login, password_hash, client_token, challonge_api_key,
	startgg_access_token, startgg_refresh_token, startgg_expires_at, startgg_scope,
	created_at, last_authed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user         models.User
		accessToken  sql.NullString
		refreshToken sql.NullString
		expiresAt    sql.NullTime
		scope        sql.NullString
		lastAuthedAt sql.NullTime
	)

	err := row.Scan(
		&user.ID,
		&user.Login,
		&user.PasswordHash,
		&user.ClientToken,
		&user.ChallongeAPIKey,
		&accessToken,
		&refreshToken,
		&expiresAt,
		&scope,
		&user.CreatedAt,
		&lastAuthedAt,
	)
	if err != nil {
		return nil, err
	}

	if accessToken.Valid && accessToken.String != "" {
		user.StartGGToken = &models.TokenInfo{
			AccessToken:  accessToken.String,
			RefreshToken: refreshToken.String,
			ExpiresAt:    expiresAt.Time,
			Scope:        scope.String,
		}
	}
	if lastAuthedAt.Valid {
		t := lastAuthedAt.Time
		user.LastAuthedAt = &t
	}
	return &user, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ClientToken == uuid.Nil {
		user.ClientToken = uuid.New()
	}

	query := `
		INSERT INTO users (login, password_hash, client_token, challonge_api_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Login,
		user.PasswordHash,
		user.ClientToken,
		user.ChallongeAPIKey,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "users_login_key" {
			return ErrUserLoginConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE ` + where
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *postgresUserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.getOne(ctx, "login = $1", login)
}

func (r *postgresUserRepository) GetByClientToken(ctx context.Context, token uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "client_token = $1", token)
}

func (r *postgresUserRepository) UpdateChallongeAPIKey(ctx context.Context, id int, apiKey string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET challonge_api_key = $1 WHERE id = $2`, apiKey, id)
	if err != nil {
		return fmt.Errorf("failed to update challonge api key: %w", err)
	}
	return userUpdated(result)
}

func (r *postgresUserRepository) UpdateStartGGToken(ctx context.Context, id int, token *models.TokenInfo) error {
	var (
		accessToken  sql.NullString
		refreshToken sql.NullString
		expiresAt    sql.NullTime
		scope        sql.NullString
	)
	if token != nil {
		accessToken = sql.NullString{String: token.AccessToken, Valid: true}
		refreshToken = sql.NullString{String: token.RefreshToken, Valid: token.RefreshToken != ""}
		expiresAt = sql.NullTime{Time: token.ExpiresAt, Valid: !token.ExpiresAt.IsZero()}
		scope = sql.NullString{String: token.Scope, Valid: token.Scope != ""}
	}

	query := `
		UPDATE users SET
			startgg_access_token = $1,
			startgg_refresh_token = $2,
			startgg_expires_at = $3,
			startgg_scope = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, accessToken, refreshToken, expiresAt, scope, id)
	if err != nil {
		return fmt.Errorf("failed to update start.gg token: %w", err)
	}
	return userUpdated(result)
}

func (r *postgresUserRepository) TouchLastAuthed(ctx context.Context, id int, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET last_authed_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last_authed_at: %w", err)
	}
	return userUpdated(result)
}

func (r *postgresUserRepository) ListWithStartGGTokens(ctx context.Context) ([]models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE startgg_access_token IS NOT NULL ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with tokens: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
