package practice

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled marks a generation superseded by a newer request. It is
	// never surfaced to the user and never triggers fallback.
	ErrCancelled = errors.New("generation cancelled")
	// ErrFallbackExhausted means the fallback could not assemble even a
	// warm-up; the static catalog is empty or corrupt.
	ErrFallbackExhausted = errors.New("fallback generation exhausted: exercise catalog unavailable")
	// ErrNothingToScale is the normalizer guard: only the warm-up exists.
	ErrNothingToScale = errors.New("no activities besides the warm-up to scale")

	ErrGenerationInFlight   = errors.New("a session is still being generated")
	ErrEmptyDraft           = errors.New("draft has no activities")
	ErrIndexOutOfRange      = errors.New("activity index out of range")
	ErrUnknownExercise      = errors.New("unknown exercise")
	ErrInvalidDuration      = fmt.Errorf("duration must be between 1 and %d minutes", MaxActivityDuration)
	ErrInvalidSessionLength = fmt.Errorf("session length must be between 1 and %d minutes", MaxSessionLength)
)

const defaultRemoteMessage = "failed to generate session"

// RemoteGenerationError covers network failures, non-2xx answers and
// undecodable payloads from the generation service.
type RemoteGenerationError struct {
	Status  int
	Message string
	Err     error
}

func NewRemoteGenerationError(status int, message string, err error) *RemoteGenerationError {
	if message == "" {
		message = defaultRemoteMessage
	}
	return &RemoteGenerationError{Status: status, Message: message, Err: err}
}

func (e *RemoteGenerationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote generation (%d): %s", e.Status, e.Message)
	}
	return "remote generation: " + e.Message
}

func (e *RemoteGenerationError) Unwrap() error { return e.Err }

func (e *RemoteGenerationError) HTTPStatusCode() int { return e.Status }

// ValidationError rejects a malformed activity. Index is -1 for list-level
// problems.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid activity %d: %s %s", e.Index, e.Field, e.Reason)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
