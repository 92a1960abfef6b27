// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody limits how much of a failed response is kept in an APIError.
const maxErrorBody = 2048

// APIError is a non-2xx response from a model provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// RateLimited reports whether the provider rejected the call with HTTP 429.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// CheckResponse returns nil for a 2xx response. Otherwise it reads a bounded
// prefix of the body and returns it as an *APIError. The body is not closed.
func CheckResponse(provider string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body, resp.StatusCode),
	}
}

// errorMessage pulls error.message out of the common provider error envelope,
// falling back to the raw body text and then the status text.
func errorMessage(body []byte, status int) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return http.StatusText(status)
	}
	return msg
}
