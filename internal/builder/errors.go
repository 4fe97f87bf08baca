package builder

import (
	"fmt"
	"unicode/utf8"
)

// ParseError reports model output that could not be decoded as a workflow
// response.
type ParseError struct {
	// Snippet is the head of the offending text, for logs and UI messages.
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing workflow response %q: %v", e.Snippet, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StoreError wraps a failure returned by the workflow store.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

const maxSnippet = 80

func snippet(raw string) string {
	if len(raw) <= maxSnippet {
		return raw
	}
	cut := maxSnippet
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut] + "..."
}
