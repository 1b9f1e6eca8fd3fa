package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Dosada05/scorebridge/middleware"
	"github.com/Dosada05/scorebridge/models"
	"github.com/Dosada05/scorebridge/services"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	authService  services.AuthService
	tokenService services.TokenRefreshService
	jwtSecret    []byte
}

func NewAuthHandler(authService services.AuthService, tokenService services.TokenRefreshService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
		jwtSecret:    []byte(jwtSecret),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Login godoc
// @Summary Вход оператора
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.Credentials true "Логин и пароль"
// @Success 200 {object} map[string]string "JWT токен"
// @Failure 401 {object} map[string]string "Неверный логин или пароль"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.Credentials

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Login == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("login and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		middleware.JWTClaimUserID: user.ID,
		middleware.JWTClaimLogin:  user.Login,
		"exp":                     now.Add(tokenTTL).Unix(),
		"iat":                     now.Unix(),
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": tokenString, "user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user, "credentials": credentialStatus(user)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateCredentials stores host credentials for the caller. Secrets are write-only and never
// echoed back.
func (h *AuthHandler) UpdateCredentials(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var input services.HostCredentialsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.UpdateHostCredentials(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"credentials": credentialStatus(user)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RefreshStartGGToken forces a refresh of the caller's start.gg token.
func (h *AuthHandler) RefreshStartGGToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	info, err := h.tokenService.ForceRefresh(r.Context(), user)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"expires_at": info.ExpiresAt, "scope": info.Scope}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type credentialsView struct {
	Challonge        bool       `json:"challonge"`
	StartGG          bool       `json:"startgg"`
	StartGGExpiresAt *time.Time `json:"startgg_expires_at,omitempty"`
}

func credentialStatus(user *models.User) credentialsView {
	view := credentialsView{Challonge: user.ChallongeAPIKey != ""}
	if tok := user.StartGGToken; tok != nil && tok.AccessToken != "" {
		view.StartGG = true
		if !tok.ExpiresAt.IsZero() {
			expires := tok.ExpiresAt
			view.StartGGExpiresAt = &expires
		}
	}
	return view
}
