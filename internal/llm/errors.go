package llm

import "fmt"

// Error classification codes persisted on retry jobs and inspected by logs.
const (
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeGenerationFailed   = "GENERATION_FAILED"
	CodeParseError         = "PARSE_ERROR"
)

// RequestError is a typed failure from the model endpoint. Status carries the
// HTTP status the failure maps to; Details holds the best-effort raw error
// body from the upstream response.
type RequestError struct {
	Status  int
	Code    string
	Message string
	Details string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Code, e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code the error maps to. The retry classifier
// dispatches on this.
func (e *RequestError) HTTPStatus() int {
	return e.Status
}
