package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is returned for a missing or malformed store domain/token
	ErrConfiguration = errors.New("invalid store configuration")

	// ErrUpstream is returned when the catalog responds non-200 or with GraphQL errors
	ErrUpstream = errors.New("catalog request failed")

	// ErrRateLimited is returned after all backoff attempts exhausted on HTTP 429
	ErrRateLimited = errors.New("catalog rate limit exceeded")

	// ErrCartCreation is returned when a cart mutation reports user errors or no checkout URL
	ErrCartCreation = errors.New("cart creation failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrAnalysisNotFound is returned when a stored analysis id is unknown or expired
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// ConfigurationError describes which store field is unusable. Fatal; no
// request is issued once one is detected.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid store configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// GraphQLError is one entry from a GraphQL top-level errors field.
type GraphQLError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// UpstreamError carries the catalog's failure payload: either a non-200
// status with the raw body, or a 200 with GraphQL-level errors. Never retried.
type UpstreamError struct {
	Status int
	Body   string
	Errors []GraphQLError
}

func (e *UpstreamError) Error() string {
	if len(e.Errors) > 0 {
		msgs := make([]string, len(e.Errors))
		for i, ge := range e.Errors {
			msgs[i] = ge.Message
		}
		return fmt.Sprintf("catalog request failed: %s", strings.Join(msgs, "; "))
	}
	return fmt.Sprintf("catalog request failed: status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// CartUserError is a field-level error from a cart mutation.
type CartUserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// CartCreationError reports a cart mutation the upstream rejected, or one
// that returned no checkout URL even without user errors.
type CartCreationError struct {
	UserErrors []CartUserError
}

func (e *CartCreationError) Error() string {
	if len(e.UserErrors) == 0 {
		return "cart creation failed: no checkout URL returned"
	}
	msgs := make([]string, len(e.UserErrors))
	for i, ue := range e.UserErrors {
		msgs[i] = ue.Message
	}
	return fmt.Sprintf("cart creation failed: %s", strings.Join(msgs, "; "))
}

func (e *CartCreationError) Unwrap() error { return ErrCartCreation }
