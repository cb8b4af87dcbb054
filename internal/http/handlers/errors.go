package handlers

import (
	"context"
	"errors"
	"net/http"

	types "github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/apierr"
)

var errorStatus = []struct {
	target error
	status int
	code   string
}{
	{types.ErrGenerationInFlight, http.StatusConflict, "generation_in_flight"},
	{types.ErrEmptyDraft, http.StatusConflict, "empty_draft"},
	{types.ErrIndexOutOfRange, http.StatusBadRequest, "index_out_of_range"},
	{types.ErrUnknownExercise, http.StatusNotFound, "unknown_exercise"},
	{types.ErrInvalidDuration, http.StatusBadRequest, "invalid_duration"},
	{types.ErrInvalidSessionLength, http.StatusBadRequest, "invalid_session_length"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
	{context.Canceled, http.StatusRequestTimeout, "cancelled"},
}

// classify maps engine and domain errors onto API errors. Errors that are
// already *apierr.Error pass through.
func classify(err error) error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.target) {
			return apierr.New(e.status, e.code, err)
		}
	}
	return err
}
