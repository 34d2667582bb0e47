// package services defines the remote movie API client and its error types
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

const maxMessageLen = 200

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// RemoteError is a non-2xx answer from the movie API.
//
// It unwraps to [shared.ErrRemoteRejected]; a 401 additionally unwraps to [shared.ErrMissingCredential].
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", shared.ErrRemoteRejected, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", shared.ErrRemoteRejected, e.StatusCode, e.Message)
}

func (e *RemoteError) Unwrap() []error {
	if e.StatusCode == http.StatusUnauthorized {
		return []error{shared.ErrRemoteRejected, shared.ErrMissingCredential}
	}
	return []error{shared.ErrRemoteRejected}
}

// IsStatus reports whether err is a [RemoteError] with the given status code.
func IsStatus(err error, code int) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == code
}

// newRemoteError builds a [RemoteError] with a human-readable message from the response body.
//
// The message is taken from a JSON "message" or "error" field, otherwise from the trimmed body text.
func newRemoteError(status int, body []byte) *RemoteError {
	return &RemoteError{StatusCode: status, Message: extractMessage(body)}
}

func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return truncate(payload.Message)
		}
		if payload.Error != "" {
			return truncate(payload.Error)
		}
	}

	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return ""
	}
	return truncate(text)
}

func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	return s[:maxMessageLen] + "..."
}

// decodeUser accepts either a {"user": {...}, "token": "..."} envelope or a bare user record.
func decodeUser(body []byte) (models.User, string, error) {
	var envelope struct {
		User  *models.User `json:"user"`
		Token string       `json:"token"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.User != nil && envelope.User.Username != "" {
		return *envelope.User, envelope.Token, nil
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return models.User{}, "", fmt.Errorf("failed to decode user: %w", err)
	}
	if err := user.Validate(); err != nil {
		return models.User{}, "", fmt.Errorf("unexpected user response: %w", err)
	}
	return user, "", nil
}
