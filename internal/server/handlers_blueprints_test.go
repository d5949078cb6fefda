package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/calebstern/habitforge/internal/transcript"
)

func TestCreateBlueprintRequestValidation(t *testing.T) {
	v := validator.New()

	valid := CreateBlueprintRequest{
		Goal:        "learn to cook weeknight dinners",
		ContentType: "youtube",
		Content:     "https://youtu.be/dQw4w9WgXcQ",
	}
	assert.NoError(t, v.Struct(&valid))

	tests := []struct {
		name   string
		mutate func(*CreateBlueprintRequest)
	}{
		{"Missing goal", func(r *CreateBlueprintRequest) { r.Goal = "" }},
		{"Goal too short", func(r *CreateBlueprintRequest) { r.Goal = "ab" }},
		{"Goal too long", func(r *CreateBlueprintRequest) { r.Goal = strings.Repeat("x", 501) }},
		{"Missing content type", func(r *CreateBlueprintRequest) { r.ContentType = "" }},
		{"Unknown content type", func(r *CreateBlueprintRequest) { r.ContentType = "podcast" }},
		{"Missing content", func(r *CreateBlueprintRequest) { r.Content = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, v.Struct(&req))
		})
	}
}

func TestTranscriptErrorMapping(t *testing.T) {
	s := &Server{logger: slog.New(slog.DiscardHandler)}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			"Bad URL is the caller's fault",
			&transcript.Error{URL: "https://example.com", Message: "not a recognizable YouTube URL"},
			http.StatusBadRequest,
		},
		{
			"Upstream HTTP failure",
			&transcript.Error{URL: "https://youtu.be/x", Status: 500, Message: "API returned HTTP 500"},
			http.StatusBadGateway,
		},
		{
			"Network failure",
			&transcript.Error{URL: "https://youtu.be/x", Message: "request failed", Cause: errors.New("dial timeout")},
			http.StatusBadGateway,
		},
		{
			"Unexpected error type",
			errors.New("boom"),
			http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.transcriptError(rec, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestParseQueryInt(t *testing.T) {
	tests := []struct {
		name  string
		query string
		def   int
		max   int
		want  int
	}{
		{"Absent uses default", "", 50, 100, 50},
		{"Present", "limit=20", 50, 100, 20},
		{"Clamped to max", "limit=500", 50, 100, 100},
		{"Unbounded when max is zero", "limit=500", 0, 0, 500},
		{"Negative falls back", "limit=-5", 50, 100, 50},
		{"Garbage falls back", "limit=abc", 50, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/blueprints?"+tt.query, nil)
			assert.Equal(t, tt.want, parseQueryInt(r, "limit", tt.def, tt.max))
		})
	}
}
