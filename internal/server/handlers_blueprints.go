package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/calebstern/habitforge/internal/db"
	"github.com/calebstern/habitforge/internal/prompts"
	"github.com/calebstern/habitforge/internal/server/middleware"
	"github.com/calebstern/habitforge/internal/transcript"
	"github.com/calebstern/habitforge/internal/types"
)

// CreateBlueprintRequest is the request body for a new blueprint.
type CreateBlueprintRequest struct {
	Goal        string `json:"goal" validate:"required,min=3,max=500"`
	ContentType string `json:"content_type" validate:"required,oneof=youtube text"`
	Content     string `json:"content" validate:"required"`
}

// RetryBlueprintRequest is the request body for retrying a failed blueprint.
// Content is required only for text submissions, whose original text is not
// persisted.
type RetryBlueprintRequest struct {
	Content string `json:"content,omitempty"`
}

// ListBlueprintsResponse wraps a page of blueprints.
type ListBlueprintsResponse struct {
	Blueprints []types.Blueprint `json:"blueprints"`
	Count      int               `json:"count"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

// handleCreateBlueprint inserts a pending blueprint record and its retry job
// with the fully-built prompt. Generation itself happens in the worker.
func (s *Server) handleCreateBlueprint(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateBlueprintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	contentType := types.ContentType(req.ContentType)
	sourceText, contentSource, err := s.resolveContent(r.Context(), contentType, req.Content)
	if err != nil {
		s.transcriptError(w, err)
		return
	}

	bp, err := s.db.CreateBlueprint(r.Context(), &db.BlueprintCreateInput{
		UserID:        userID,
		Goal:          req.Goal,
		ContentSource: contentSource,
		ContentType:   contentType,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	if err := s.enqueueJob(r.Context(), bp, sourceText); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, bp)
}

// handleGetBlueprint returns a single blueprint with its payload. Records
// owned by other users read as not found.
func (s *Server) handleGetBlueprint(w http.ResponseWriter, r *http.Request) {
	bp, ok := s.ownedBlueprint(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, bp)
}

// handleListBlueprints lists the authenticated user's blueprints.
func (s *Server) handleListBlueprints(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := parseQueryInt(r, "limit", 50, 100)
	offset := parseQueryInt(r, "offset", 0, 0)

	blueprints, err := s.db.ListBlueprintsByUser(r.Context(), userID, limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if blueprints == nil {
		blueprints = []types.Blueprint{}
	}

	s.jsonResponse(w, http.StatusOK, ListBlueprintsResponse{
		Blueprints: blueprints,
		Count:      len(blueprints),
		Limit:      limit,
		Offset:     offset,
	})
}

// handleRetryBlueprint moves a failed blueprint back to pending and
// re-enqueues a retry job.
func (s *Server) handleRetryBlueprint(w http.ResponseWriter, r *http.Request) {
	bp, ok := s.ownedBlueprint(w, r)
	if !ok {
		return
	}

	if bp.Status != types.StatusFailed {
		s.errorResponse(w, http.StatusConflict, "Only failed blueprints can be retried")
		return
	}

	var req RetryBlueprintRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var sourceText string
	switch bp.ContentType {
	case types.ContentYouTube:
		text, err := s.transcripts.Fetch(r.Context(), bp.ContentSource)
		if err != nil {
			s.transcriptError(w, err)
			return
		}
		sourceText = text
	default:
		// Raw text submissions are not persisted, so a retry must resubmit
		// the original content.
		if req.Content == "" {
			s.errorResponse(w, http.StatusBadRequest, "content is required to retry a text blueprint")
			return
		}
		sourceText = req.Content
	}

	reset, err := s.db.ResetBlueprint(r.Context(), bp.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if !reset {
		s.errorResponse(w, http.StatusConflict, "Blueprint is no longer in the failed state")
		return
	}
	bp.Status = types.StatusPending
	bp.AIOutput = nil

	if err := s.enqueueJob(r.Context(), bp, sourceText); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, bp)
}

// handleDeleteBlueprint removes a blueprint and its retry job.
func (s *Server) handleDeleteBlueprint(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid blueprint ID")
		return
	}

	deleted, err := s.db.DeleteBlueprint(r.Context(), id, userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if !deleted {
		s.errorResponse(w, http.StatusNotFound, "Blueprint not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedBlueprint loads the blueprint in the path and checks ownership,
// writing the error response itself when anything is off.
func (s *Server) ownedBlueprint(w http.ResponseWriter, r *http.Request) (*types.Blueprint, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid blueprint ID")
		return nil, false
	}

	bp, err := s.db.GetBlueprint(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return nil, false
	}
	if bp == nil || bp.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "Blueprint not found")
		return nil, false
	}

	return bp, true
}

// resolveContent turns the submitted content into source text and the
// content-source value stored on the record: the URL for YouTube
// submissions, a literal marker for raw text.
func (s *Server) resolveContent(ctx context.Context, contentType types.ContentType, content string) (sourceText, contentSource string, err error) {
	if contentType == types.ContentYouTube {
		text, err := s.transcripts.Fetch(ctx, content)
		if err != nil {
			return "", "", err
		}
		return text, content, nil
	}
	return content, types.TextSourceMarker, nil
}

// enqueueJob builds the generation prompt and inserts the retry job.
func (s *Server) enqueueJob(ctx context.Context, bp *types.Blueprint, sourceText string) error {
	prompt := prompts.Format(s.promptTemplate, map[string]string{
		"Goal":    bp.Goal,
		"Content": sourceText,
	})

	_, err := s.db.CreateRetryJob(ctx, bp.ID, db.RequestData{
		Prompt: prompt,
		Metadata: map[string]any{
			"content_type":   string(bp.ContentType),
			"content_source": bp.ContentSource,
		},
	})
	return err
}

// transcriptError maps transcript client failures to API responses: bad
// URLs are the caller's fault, upstream failures are a bad gateway.
func (s *Server) transcriptError(w http.ResponseWriter, err error) {
	var terr *transcript.Error
	if errors.As(err, &terr) && terr.Status == 0 && terr.Cause == nil {
		s.errorResponse(w, http.StatusBadRequest, terr.Message)
		return
	}
	s.errorResponse(w, http.StatusBadGateway, "Transcript extraction failed: "+err.Error())
}
