package service

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// User-visible errors. These surface verbatim to the calling collaborator
// and are never retried.
var (
	ErrNoActiveSession      = errors.New("no active session")
	ErrAlreadySubmitted     = errors.New("already submitted")
	ErrNoQuestionsAvailable = errors.New("no questions available")
	ErrAttemptsExhausted    = errors.New("attempts exhausted")
	ErrNoActiveChallenge    = errors.New("no active challenge")
)

// ErrServiceUnavailable masks infrastructure and data-integrity failures;
// the detail is logged, never leaked to the caller.
var ErrServiceUnavailable = errors.New("service unavailable")

// IsUserError reports whether err is one of the expected, user-visible
// outcomes rather than an infrastructure failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrNoActiveSession) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrNoQuestionsAvailable) ||
		errors.Is(err, ErrAttemptsExhausted) ||
		errors.Is(err, ErrNoActiveChallenge)
}

// infraError logs a storage failure with context and returns the generic
// ErrServiceUnavailable. Not-found is the caller's decision, never infra.
func infraError(op string, err error) error {
	log.Error().Err(err).Str("op", op).Msg("Storage operation failed")
	return ErrServiceUnavailable
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
