// Package api holds the request and response plumbing shared by the v1
// handlers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/calendar"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error maps the error taxonomy onto status codes. Anything unrecognised is
// logged and reported as a bare 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *apperr.ValidationError
		ce *apperr.ConsistencyError
	)

	switch {
	case errors.As(err, &ve) && ve.Field == "actor":
		JSON(w, http.StatusUnauthorized, ErrorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.As(err, &ve):
		JSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.As(err, &ce):
		JSON(w, http.StatusConflict, ErrorResponse{Error: ce.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		JSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrAlreadyVoided), errors.Is(err, apperr.ErrAlreadyClosed):
		JSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		JSON(w, http.StatusForbidden, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// Decode reads a JSON body, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return apperr.Invalid("body", err.Error())
	}

	return nil
}

func ID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, apperr.Invalid(param, "must be a uuid")
	}

	return id, nil
}

// Actor returns the identity the auth middleware attached. A missing actor
// comes back zero valued and fails validation inside the service.
func Actor(r *http.Request) actor.Actor {
	a, _ := actor.FromContext(r.Context())
	return a
}

// Dates resolves YYYY-MM-DD or "today" in the clinic's time zone.
type Dates struct {
	Loc   *time.Location
	Clock calendar.Clock
}

func (d Dates) parse(field, s string) (time.Time, error) {
	loc := d.Loc
	if loc == nil {
		loc = time.UTC
	}

	day, err := calendar.Parse(s, d.Clock.Now(), loc)
	if err != nil {
		return time.Time{}, apperr.Invalid(field, "must be YYYY-MM-DD or today")
	}

	return day, nil
}

// Param reads a date from the URL path.
func (d Dates) Param(r *http.Request, name string) (time.Time, error) {
	return d.parse(name, chi.URLParam(r, name))
}

// Query reads a date from the query string; an absent value means today.
func (d Dates) Query(r *http.Request, name string) (time.Time, error) {
	return d.parse(name, r.URL.Query().Get(name))
}

// Body resolves a date sent inside a JSON body.
func (d Dates) Body(field, s string) (time.Time, error) {
	return d.parse(field, s)
}

// Flag reads a boolean query parameter; only "true" and "1" enable it.
func Flag(r *http.Request, name string) bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "true", "1":
		return true
	}

	return false
}
