// Package api exposes the bcms service over HTTP using chi and render.
// Every response uses the same envelope; service errors map to statuses
// in one place so handlers stay thin.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

// envelope is the uniform response body.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Meta    *bcms.PageMeta      `json:"meta,omitempty"`
}

func respondData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Success: true, Message: message})
}

func respondList(w http.ResponseWriter, r *http.Request, data interface{}, meta bcms.PageMeta) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, envelope{Success: true, Data: data, Meta: &meta})
}

func respondBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, envelope{Success: false, Error: message})
}

// respondError translates a service error into the envelope. Unmapped
// errors become a generic 500 so internals never leak to clients.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *bcms.ValidationError
	if errors.As(err, &verr) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, envelope{Success: false, Error: "validation failed", Errors: verr.Fields})
		return
	}

	status := 0
	message := ""

	switch {
	case errors.Is(err, bcms.ErrNoClientAssociation):
		status, message = http.StatusUnprocessableEntity, bcms.ErrNoClientAssociation.Error()
	case errors.Is(err, bcms.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, bcms.ErrUnauthenticated.Error()
	case errors.Is(err, bcms.ErrIncorrectCredentials):
		status, message = http.StatusUnauthorized, bcms.ErrIncorrectCredentials.Error()
	case errors.Is(err, bcms.ErrForbidden):
		status, message = http.StatusForbidden, bcms.ErrForbidden.Error()
	case errors.Is(err, bcms.ErrUserNotFound):
		status, message = http.StatusNotFound, bcms.ErrUserNotFound.Error()
	case errors.Is(err, bcms.ErrClientNotFound):
		status, message = http.StatusNotFound, bcms.ErrClientNotFound.Error()
	case errors.Is(err, bcms.ErrPostNotFound):
		status, message = http.StatusNotFound, bcms.ErrPostNotFound.Error()
	case errors.Is(err, bcms.ErrCategoryNotFound):
		status, message = http.StatusNotFound, bcms.ErrCategoryNotFound.Error()
	case errors.Is(err, bcms.ErrAssociationNotFound):
		status, message = http.StatusNotFound, bcms.ErrAssociationNotFound.Error()
	case errors.Is(err, bcms.ErrDuplicateAssociation):
		status, message = http.StatusConflict, bcms.ErrDuplicateAssociation.Error()
	case errors.Is(err, bcms.ErrStorageNotConfigured):
		status, message = http.StatusInternalServerError, bcms.ErrStorageNotConfigured.Error()
	default:
		// Unexpected failure: the envelope carries the error string but
		// never a stack trace.
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, envelope{Success: false, Message: "internal server error", Error: err.Error()})
		return
	}

	render.Status(r, status)
	render.JSON(w, r, envelope{Success: false, Error: message})
}

// parsePagination reads page and per_page query parameters. Out-of-range
// values are clamped later by Pagination.Normalize.
func parsePagination(r *http.Request) bcms.Pagination {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return bcms.Pagination{Page: page, PerPage: perPage}
}
