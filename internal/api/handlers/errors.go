package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
	"github.com/Conceptual-Machines/magda-harmony/internal/music"
	"github.com/Conceptual-Machines/magda-harmony/internal/spelling"
	"github.com/Conceptual-Machines/magda-harmony/internal/theory"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// clientErrors are caused by the request and map to 400
var clientErrors = []error{
	spelling.ErrUnknownStrategy,
	spelling.ErrDuplicatePitchClass,
	spelling.ErrInvalidPitchClass,
	spelling.ErrTooManyPitchClasses,
	music.ErrInvalidNote,
	music.ErrNoSpelling,
	theory.ErrInvalidChord,
	errBatchTooLarge,
}

// statusForError maps domain errors to HTTP status codes
func statusForError(err error) int {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	if errors.Is(err, theory.ErrNoInterval) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, context.Canceled) {
		return statusClientClosedRequest
	}
	return http.StatusInternalServerError
}

// respondError logs the failure and writes {"error": ...}
func respondError(c *gin.Context, msg string, err error) {
	status := statusForError(err)
	fields := logger.WithContext(c)
	fields["status_code"] = status

	switch {
	case status == statusClientClosedRequest:
		// the client went away; nothing to report
		fields["error"] = err.Error()
		logger.Warn(msg, fields)
	case status >= http.StatusInternalServerError:
		logger.Error(msg, err, fields)
	case status == http.StatusUnprocessableEntity:
		// well-formed input the theory code could not handle
		fields["error"] = err.Error()
		logger.LogToSentry(sentry.LevelWarning, msg, fields)
		logger.Warn(msg, fields)
	default:
		fields["error"] = err.Error()
		logger.Warn(msg, fields)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
