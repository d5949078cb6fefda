package parsing

import "fmt"

// snippetLimit caps the diagnostic snippets carried by a ParseError.
const snippetLimit = 500

// ParseError represents a failure to recover a structured payload from model
// output. Raw and Sanitized carry truncated snippets of the text at each
// stage for diagnostics.
type ParseError struct {
	Message   string
	Raw       string
	Sanitized string
	Cause     error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func newParseError(message, raw, sanitized string, cause error) *ParseError {
	return &ParseError{
		Message:   message,
		Raw:       truncate(raw, snippetLimit),
		Sanitized: truncate(sanitized, snippetLimit),
		Cause:     cause,
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
