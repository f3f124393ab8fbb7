package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// User-facing messages used when the server does not supply one.
const (
	MessageUnknown    = "An unknown error occurred."
	MessageUnexpected = "An unexpected error occurred."
	MessageBadRequest = "Bad request."
)

// ErrorClass represents a classification of API failures.
type ErrorClass string

const (
	// ErrorClassBadRequest represents 400 responses.
	ErrorClassBadRequest ErrorClass = "bad_request"

	// ErrorClassUnauthorized represents 401 responses.
	ErrorClassUnauthorized ErrorClass = "unauthorized"

	// ErrorClassNotFound represents 404 responses. It only labels the error;
	// the message follows the unknown-error rule.
	ErrorClassNotFound ErrorClass = "not_found"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassUnknown represents network failures, timeouts and any status
	// not covered above.
	ErrorClassUnknown ErrorClass = "unknown"
)

// Failure is the raw description of a failed call at the transport boundary.
type Failure struct {
	// Status is the HTTP status code, 0 when no response was received.
	Status int

	// URL is the request target.
	URL string

	// Body is the raw response body, if any.
	Body []byte

	// Message is the transport's own description (e.g. "400 Bad Request"
	// or the network error text).
	Message string
}

// APIError is the only error shape callers of the repository ever see.
type APIError struct {
	Status   int
	Class    ErrorClass
	Message  string
	URL      string
	RawError json.RawMessage
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("employee api %s error: %s", e.Class, e.Message)
	}
	return fmt.Sprintf("employee api %s error (status %d): %s", e.Class, e.Status, e.Message)
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ClassOf maps an HTTP status to its error class.
func ClassOf(status int) ErrorClass {
	switch {
	case status == http.StatusBadRequest:
		return ErrorClassBadRequest
	case status == http.StatusUnauthorized:
		return ErrorClassUnauthorized
	case status == http.StatusNotFound:
		return ErrorClassNotFound
	case status >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnknown
	}
}

// Normalize turns a transport failure into an APIError. The same rules apply
// to every verb.
func Normalize(f Failure) *APIError {
	serverMsg := serverMessage(f.Body)
	message := MessageUnknown

	switch f.Status {
	case http.StatusBadRequest:
		switch {
		case serverMsg != "":
			message = serverMsg
		case f.Message != "":
			message = f.Message
		default:
			message = MessageBadRequest
		}
	case http.StatusUnauthorized:
		if serverMsg != "" {
			message = serverMsg
		}
	case http.StatusInternalServerError:
		message = MessageUnexpected
		if serverMsg != "" {
			message = serverMsg
		}
	}

	apiErr := &APIError{
		Status:  f.Status,
		Class:   ClassOf(f.Status),
		Message: message,
		URL:     f.URL,
	}
	if len(f.Body) > 0 {
		if json.Valid(f.Body) {
			apiErr.RawError = append(json.RawMessage(nil), f.Body...)
		} else {
			quoted, _ := json.Marshal(string(f.Body))
			apiErr.RawError = quoted
		}
	}
	return apiErr
}

// normalizeErr makes sure err is an *APIError. Anything else is treated as a
// network-level failure against url.
func normalizeErr(err error, url string) *APIError {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr
	}
	return Normalize(Failure{URL: url, Message: err.Error()})
}

// serverMessage extracts the "message" field of a JSON error body.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}
