package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/AdamBeresnev/olympics-draws/internal/catalog"
	"github.com/AdamBeresnev/olympics-draws/internal/store"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: msg})
}

func Unauthorized(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: msg})
}

func Forbidden(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusForbidden, ErrorResponse{Error: msg})
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, bracket.ErrDrawNotFound),
		errors.Is(err, bracket.ErrMatchNotFound),
		errors.Is(err, catalog.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, bracket.ErrUnsupported):
		return http.StatusUnprocessableEntity
	case errors.Is(err, bracket.ErrInvalidConfiguration),
		errors.Is(err, bracket.ErrInvalidWinner):
		return http.StatusBadRequest
	case errors.Is(err, bracket.ErrParticipantsNotReady),
		errors.Is(err, bracket.ErrIllegalStateTransition),
		errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// ServiceError writes the response for an error returned by the engine.
// Unexpected errors are logged and hidden from the client.
func ServiceError(w http.ResponseWriter, msg string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		InternalServerError(w, msg, err)
		return
	}
	slog.Warn("request rejected", "message", msg, "status", status, "error", err)
	WriteJSON(w, status, ErrorResponse{Error: err.Error()})
}
