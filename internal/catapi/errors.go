// Package catapi is the HTTP client for the Cheshire Cat chat API.
// This file contains the error types shared by all endpoint calls.

package catapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of an error response body is read for detail
// extraction.
const maxErrorBody = 64 * 1024

// ErrMalformedResponse marks a 2xx response whose body did not match the
// documented shape. Callers fail closed on it instead of crashing.
var ErrMalformedResponse = errors.New("malformed response")

// AuthError is returned by Authenticate and by header construction when no
// token is available.
type AuthError struct {
	// Unauthorized is true for a 401 response (bad credentials), false for
	// any other authentication failure (transport error, missing token).
	Unauthorized bool
	Detail       string
	Err          error
}

func (e *AuthError) Error() string {
	if e.Unauthorized {
		return "authentication failed: invalid username or password"
	}
	if e.Detail != "" {
		return fmt.Sprintf("authentication failed: %s", e.Detail)
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is an AuthError caused by rejected
// credentials, as opposed to a transport or protocol failure.
func IsUnauthorized(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Unauthorized
}

// APIError is any transport failure or non-2xx response from an
// authenticated endpoint.
type APIError struct {
	Op     string // endpoint context, e.g. "fetching chats"
	Status int    // HTTP status code, 0 for transport failures
	Detail string // best-effort detail extracted from the error body
	Err    error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		if e.Detail != "" {
			return fmt.Sprintf("error in %s: status %d | details: %s", e.Op, e.Status, e.Detail)
		}
		return fmt.Sprintf("error in %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("error in %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// extractDetail pulls a human-readable detail string out of an error
// response body: JSON bodies are re-marshaled compact, anything else is
// returned as raw text.
func extractDetail(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return ""
	}

	var parsed any
	if json.Unmarshal(body, &parsed) == nil {
		if compact, err := json.Marshal(parsed); err == nil {
			return string(compact)
		}
	}
	return string(body)
}

// newAPIError builds an APIError from a non-2xx response, consuming the
// body for detail extraction.
func newAPIError(op string, resp *http.Response) *APIError {
	return &APIError{
		Op:     op,
		Status: resp.StatusCode,
		Detail: extractDetail(resp),
	}
}
