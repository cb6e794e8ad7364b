package http

import (
	"bytes"
	"errors"
	"net/http"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
)

// classify maps engine errors to an HTTP status and a user-facing message.
// Anything unrecognised is treated as the store being unavailable.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrAccountNotFound):
		return http.StatusUnauthorized, msgUserNotFound
	case errors.Is(err, core.ErrEmptySelection):
		return http.StatusUnprocessableEntity, msgEmptySelection
	case errors.Is(err, core.ErrNoMatchingTransactions):
		return http.StatusNotFound, msgNoMatches
	case errors.Is(err, core.ErrInvalidType), errors.Is(err, core.ErrInvalidRange):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusServiceUnavailable, msgUnavailable
	}
}

// requestLogger returns the logger scoped to r, tagged with its request id.
func requestLogger(r *http.Request) *log.Logger {
	return log.FromContext(r.Context())
}

func (s *Server) logFailure(r *http.Request, user string, status int, err error) {
	logger := requestLogger(r)
	fields := log.NewFields().WithUser(user).WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "")
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, log.OpLoad, fields)
		return
	}
	logger.InfoContext(r.Context(), "Request rejected", append(fields.WithError(err).ToSlice(), log.FieldStatusCode, status)...)
}

// renderFailure shows a full-page message for a failed page load.
func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request, user string, err error) {
	status, msg := classify(err)
	s.logFailure(r, user, status, err)

	title := "Something went wrong"
	switch status {
	case http.StatusUnauthorized:
		title = "Please log in"
	case http.StatusBadRequest:
		title = "Invalid request"
	case http.StatusServiceUnavailable:
		title = "Temporarily unavailable"
	}
	s.render(w, r, status, "message_page", messageView{Title: title, Message: msg, Status: status})
}

// partialFailure answers an htmx partial request with an error fragment.
func (s *Server) partialFailure(w http.ResponseWriter, r *http.Request, user string, err error) {
	status, msg := classify(err)
	s.logFailure(r, user, status, err)
	ErrorResponse(status, msg).Write(w)
}

// render executes a template into a buffer first so a template error never
// produces a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	body := s.renderBytes(r, name, data)
	if body == nil {
		InternalServerError("Could not render page").Write(w)
		return
	}
	NewHTMXResponse().
		Status(status).
		Header("Content-Type", "text/html; charset=utf-8").
		Body(body).
		Write(w)
}

func (s *Server) renderBytes(r *http.Request, name string, data any) []byte {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		requestLogger(r).ErrorContext(r.Context(), "Template execution failed",
			"template", name,
			log.FieldError, err,
			log.FieldOperation, log.OpRender)
		return nil
	}
	return buf.Bytes()
}
