package llm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
)

var (
	// ErrUpstream matches every non-2xx answer from the API.
	ErrUpstream = errors.New("llm upstream error")
	// ErrInvalidIntelligence is returned for an unknown tier.
	ErrInvalidIntelligence = errors.New("invalid llm intelligence")
	// ErrEmptyPrompt is returned when a request has no messages.
	ErrEmptyPrompt = errors.New("llm request has no prompts")
	// ErrInvalidSchema is returned when ResponseSchema is not a JSON object.
	ErrInvalidSchema = errors.New("invalid llm response schema")
	// ErrInvalidResponse is returned when the reply does not match the schema.
	ErrInvalidResponse = errors.New("invalid llm response")
	// ErrMissingAPIKey is returned when the key secret has no OPENAI entry.
	ErrMissingAPIKey = errors.New("llm api key missing")
	// ErrNilContext is returned when a nil context is passed.
	ErrNilContext = errors.New("context is nil")
)

// StatusError carries the HTTP status of a failed call. The response body is
// not kept.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d %s", ErrUpstream, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

// mapError replaces SDK API errors, whose text embeds the response body, with
// a StatusError.
func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.StatusCode}
	}

	return fmt.Errorf("llm request failed: %w", err)
}

func isStatus(err error, code int) bool {
	var se *StatusError

	return errors.As(err, &se) && se.StatusCode == code
}
