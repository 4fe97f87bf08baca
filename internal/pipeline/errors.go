package pipeline

import (
	"context"
	"errors"

	"github.com/ziadkadry99/promptflow/internal/builder"
	"github.com/ziadkadry99/promptflow/internal/prompt"
	"github.com/ziadkadry99/promptflow/internal/tools"
)

// ErrMissingCredential is returned when no API key is available.
var ErrMissingCredential = prompt.ErrMissingCredential

// Error kinds recorded in history and reported to surfaces.
const (
	KindMissingCredential = "missing_credential"
	KindEmptyPrompt       = "empty_prompt"
	KindProvider          = "provider"
	KindParse             = "parse"
	KindStore             = "store"
	KindInvalidParam      = "invalid_param"
	KindCanceled          = "canceled"
	KindOther             = "other"
)

// ErrorKind classifies an error returned by a pipeline.
func ErrorKind(err error) string {
	var (
		pe    *prompt.ProviderError
		parse *builder.ParseError
		se    *builder.StoreError
		param *tools.ParamError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, prompt.ErrEmptyPrompt):
		return KindEmptyPrompt
	case errors.As(err, &parse):
		return KindParse
	case errors.As(err, &se):
		return KindStore
	case errors.As(err, &param):
		return KindInvalidParam
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.As(err, &pe):
		return KindProvider
	default:
		return KindOther
	}
}

// UserMessage turns an error into the short text shown inline on a surface.
func UserMessage(err error) string {
	switch ErrorKind(err) {
	case "":
		return ""
	case KindMissingCredential:
		return "OpenAI API key not found"
	case KindEmptyPrompt:
		return "Please enter a prompt"
	case KindProvider:
		var pe *prompt.ProviderError
		errors.As(err, &pe)
		switch {
		case pe.Unauthorized():
			return "The API key was rejected"
		case pe.RateLimited():
			return "Rate limit reached, try again later"
		}
		return "The language model request failed"
	case KindParse:
		return "The model returned an invalid workflow"
	case KindStore:
		return "Failed to update the workflow"
	case KindInvalidParam:
		return err.Error()
	case KindCanceled:
		return "Request cancelled"
	default:
		return "Something went wrong"
	}
}
