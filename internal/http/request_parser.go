// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating request
// parameters of the dashboard endpoints.

package http

import (
	"net/http"
	"net/url"
	"strings"

	"budgetbuddy/internal/core"
)

// ParseTxType reads ?type=, defaulting to Expense. An unknown value is
// reported so the caller can log it, and Expense is still returned.
func ParseTxType(query url.Values) (core.TxType, error) {
	v := strings.TrimSpace(query.Get("type"))
	if v == "" {
		return core.Expense, nil
	}
	t, err := core.ParseTxType(v)
	if err != nil {
		return core.Expense, err
	}
	return t, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
