package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/calebstern/habitforge/internal/db"
	"github.com/calebstern/habitforge/internal/llm"
	"github.com/calebstern/habitforge/internal/parsing"
	"github.com/calebstern/habitforge/internal/types"
)

// backoffSchedule is the fixed delay table, indexed by the retry count
// before the failing attempt. More retries than entries means exhaustion.
var backoffSchedule = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	90 * time.Second,
	270 * time.Second,
}

// errorMessageLimit caps the error snippet persisted on the job row.
const errorMessageLimit = 500

// OutcomeKind identifies how an attempt settled.
type OutcomeKind string

// Attempt outcomes.
const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeRetryScheduled OutcomeKind = "retry_scheduled"
	OutcomeFailed         OutcomeKind = "failed"
)

// FailureReason explains a terminal failure.
type FailureReason string

// Terminal failure reasons.
const (
	ReasonMaxRetries   FailureReason = "max_retries"
	ReasonNonRetriable FailureReason = "non_retriable"
)

// Outcome is the result of processing one retry job. Exactly one of the
// three kinds is produced per attempt; the processor never propagates an
// error to its caller.
type Outcome struct {
	Kind         OutcomeKind
	RetryCount   int
	NextRetryAt  time.Time
	Reason       FailureReason
	ErrorMessage string
}

// Generator produces raw model text for a prompt.
type Generator interface {
	GenerateBlueprint(ctx context.Context, prompt string) (string, error)
}

// BlueprintStore settles blueprint lifecycle state.
type BlueprintStore interface {
	CompleteBlueprint(ctx context.Context, id uuid.UUID, payload *types.BlueprintPayload) error
	FailBlueprint(ctx context.Context, id uuid.UUID) error
}

// JobStore mutates and removes retry job rows.
type JobStore interface {
	RescheduleRetryJob(ctx context.Context, id uuid.UUID, retryCount int, nextRetryAt time.Time, errorCode, errorMessage string) error
	DeleteRetryJob(ctx context.Context, id uuid.UUID) error
}

// Processor orchestrates a single generation attempt for a retry job.
type Processor struct {
	gen        Generator
	blueprints BlueprintStore
	jobs       JobStore
	logger     *slog.Logger
	now        func() time.Time
}

// NewProcessor creates a processor. A nil logger discards output.
func NewProcessor(gen Generator, blueprints BlueprintStore, jobs JobStore, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{
		gen:        gen,
		blueprints: blueprints,
		jobs:       jobs,
		logger:     logger,
		now:        time.Now,
	}
}

// Process runs one attempt: generate, parse, persist. On failure the error
// is classified and either rescheduled with backoff or terminated. All
// errors are absorbed into the returned Outcome.
func (p *Processor) Process(ctx context.Context, job *db.RetryJob) Outcome {
	payload, err := p.attempt(ctx, job)
	if err == nil {
		err = p.blueprints.CompleteBlueprint(ctx, job.BlueprintID, payload)
	}
	if err != nil {
		return p.handleFailure(ctx, job, err)
	}

	// Completion and job deletion are separate writes; a crash between them
	// leaves a duplicate job that would re-store an identical result.
	if err := p.jobs.DeleteRetryJob(ctx, job.ID); err != nil {
		p.logger.Warn("failed to delete retry job after success",
			"job_id", job.ID, "error", err)
	}

	p.logger.Info("blueprint generation succeeded",
		"job_id", job.ID, "blueprint_id", job.BlueprintID, "retry_count", job.RetryCount)
	return Outcome{Kind: OutcomeSuccess}
}

// attempt performs the generate+parse pipeline. Parser failures are wrapped
// into the same typed error shape the client produces so classification and
// logging treat them uniformly.
func (p *Processor) attempt(ctx context.Context, job *db.RetryJob) (*types.BlueprintPayload, error) {
	raw, err := p.gen.GenerateBlueprint(ctx, job.RequestData.Prompt)
	if err != nil {
		return nil, err
	}

	payload, err := parsing.ParseBlueprint(raw)
	if err != nil {
		return nil, wrapParseError(err)
	}
	return payload, nil
}

func (p *Processor) handleFailure(ctx context.Context, job *db.RetryJob, cause error) Outcome {
	classification := Classify(cause)
	p.logger.Warn("blueprint generation attempt failed",
		"job_id", job.ID,
		"blueprint_id", job.BlueprintID,
		"retry_count", job.RetryCount,
		"classification", classification.String(),
		"error", cause)

	if classification != Retriable {
		p.terminate(ctx, job)
		return Outcome{
			Kind:         OutcomeFailed,
			Reason:       ReasonNonRetriable,
			ErrorMessage: cause.Error(),
		}
	}

	newCount := job.RetryCount + 1
	if newCount > len(backoffSchedule) {
		p.terminate(ctx, job)
		return Outcome{
			Kind:         OutcomeFailed,
			Reason:       ReasonMaxRetries,
			ErrorMessage: cause.Error(),
		}
	}

	nextRetryAt := p.now().Add(backoffSchedule[newCount-1])
	if err := p.jobs.RescheduleRetryJob(ctx, job.ID, newCount, nextRetryAt,
		errorCode(cause), truncateMessage(cause.Error())); err != nil {
		p.logger.Error("failed to reschedule retry job",
			"job_id", job.ID, "error", err)
	}

	return Outcome{
		Kind:        OutcomeRetryScheduled,
		RetryCount:  newCount,
		NextRetryAt: nextRetryAt,
	}
}

// terminate marks the blueprint failed and removes the job. Persistence
// errors here are logged, not propagated; the worker must keep draining its
// batch.
func (p *Processor) terminate(ctx context.Context, job *db.RetryJob) {
	if err := p.blueprints.FailBlueprint(ctx, job.BlueprintID); err != nil {
		p.logger.Error("failed to mark blueprint failed",
			"blueprint_id", job.BlueprintID, "error", err)
	}
	if err := p.jobs.DeleteRetryJob(ctx, job.ID); err != nil {
		p.logger.Error("failed to delete retry job",
			"job_id", job.ID, "error", err)
	}
}

// wrapParseError converts a parser failure into the client error shape,
// tagged PARSE_ERROR with HTTP 502 and the diagnostic snippets as details.
func wrapParseError(err error) error {
	var pe *parsing.ParseError
	if !errors.As(err, &pe) {
		return err
	}
	return &llm.RequestError{
		Status:  http.StatusBadGateway,
		Code:    llm.CodeParseError,
		Message: pe.Message,
		Details: fmt.Sprintf("raw: %s\nsanitized: %s", pe.Raw, pe.Sanitized),
		Cause:   err,
	}
}

// errorCode extracts the classification code persisted on the job row.
func errorCode(err error) string {
	var re *llm.RequestError
	if errors.As(err, &re) {
		return re.Code
	}
	return "UNKNOWN"
}

func truncateMessage(msg string) string {
	if len(msg) <= errorMessageLimit {
		return msg
	}
	return msg[:errorMessageLimit]
}
