package prompt

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrMissingCredential is returned before any network call when no API
	// key has been configured.
	ErrMissingCredential = errors.New("prompt: api key not configured")

	// ErrEmptyPrompt is returned when the prompt is blank.
	ErrEmptyPrompt = errors.New("prompt: prompt is empty")
)

// ProviderError wraps any failure reported by the hosted completion API:
// transport, authentication, quota or rate limiting.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// RateLimited reports whether the provider rejected the call for quota or
// rate-limit reasons.
func (e *ProviderError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Unauthorized reports whether the provider rejected the credential.
func (e *ProviderError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// WrapProviderError wraps an error returned by a hosted model API, picking
// up the HTTP status when the client library reported one.
func WrapProviderError(provider string, err error) *ProviderError {
	pe := &ProviderError{Provider: provider, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
	}
	return pe
}
