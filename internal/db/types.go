package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebstern/habitforge/internal/types"
)

// RetryJob is one in-flight attempt to produce a blueprint's output. It is
// mutated in place on each retriable failure and deleted on any terminal
// outcome.
type RetryJob struct {
	ID               uuid.UUID   `json:"id"`
	BlueprintID      uuid.UUID   `json:"blueprint_id"`
	RequestData      RequestData `json:"request_data"`
	RetryCount       int         `json:"retry_count"`
	NextRetryAt      time.Time   `json:"next_retry_at"`
	LastErrorCode    *string     `json:"last_error_code,omitempty"`
	LastErrorMessage *string     `json:"last_error_message,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// RequestData is the payload a retry job carries. The prompt is fully built
// by the request-creation entrypoint; the worker only consumes it.
type RequestData struct {
	Prompt   string         `json:"prompt"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// BlueprintCreateInput holds the fields for a new pending blueprint record.
type BlueprintCreateInput struct {
	UserID        uuid.UUID
	Goal          string
	ContentSource string
	ContentType   types.ContentType
}
