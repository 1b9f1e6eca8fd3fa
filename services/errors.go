package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации
	ErrValidation       = errors.New("validation failed")
	ErrWrongScoreCount  = fmt.Errorf("%w: a score report needs exactly two entries", ErrValidation)
	ErrScoreNegative    = fmt.Errorf("%w: wins cannot be negative", ErrValidation)
	ErrURLRequired      = fmt.Errorf("%w: tournament url is required", ErrValidation)
	ErrLoginRequired    = fmt.Errorf("%w: login is required", ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)

	ErrUnknownHost = errors.New("tournament url does not belong to a supported host")

	// Ошибки реестра турниров
	ErrTournamentNotLoaded = errors.New("tournament is not loaded")
	ErrMatchNotFound       = errors.New("match not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrFetchFailed         = errors.New("tournament could not be fetched from its host")

	// Ошибки аутентификации
	ErrAuthInvalidCredentials = errors.New("invalid login or password")
	ErrUserNotFound           = errors.New("user not found")
	ErrUserLoginConflict      = errors.New("login is already taken")
	ErrMissingHostCredential  = errors.New("no credential stored for this host")
	ErrTokenRevoked           = errors.New("stored token was rejected by the host and has been cleared")
)
