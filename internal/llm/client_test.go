package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestNewClientWithoutKey(t *testing.T) {
	client, err := NewClient(context.Background(), nil, "")
	require.NoError(t, err)

	_, err = client.GenerateBlueprint(context.Background(), "prompt")
	var rerr *RequestError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusServiceUnavailable, rerr.Status)
	assert.Equal(t, CodeServiceUnavailable, rerr.Code)
	assert.NoError(t, client.Close())
}

func TestMapRequestError(t *testing.T) {
	t.Run("Rate limited", func(t *testing.T) {
		err := mapRequestError(&googleapi.Error{Code: 429, Body: `{"error": "quota"}`})
		var rerr *RequestError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, http.StatusTooManyRequests, rerr.Status)
		assert.Equal(t, CodeRateLimited, rerr.Code)
		assert.Contains(t, rerr.Details, "quota")
	})

	t.Run("Other API errors map to 503", func(t *testing.T) {
		for _, code := range []int{400, 500, 502} {
			err := mapRequestError(&googleapi.Error{Code: code})
			var rerr *RequestError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, http.StatusServiceUnavailable, rerr.Status)
			assert.Equal(t, CodeServiceUnavailable, rerr.Code)
			assert.Contains(t, rerr.Message, fmt.Sprintf("%d", code))
		}
	})

	t.Run("Wrapped API error", func(t *testing.T) {
		inner := fmt.Errorf("call failed: %w", &googleapi.Error{Code: 503})
		var rerr *RequestError
		require.ErrorAs(t, mapRequestError(inner), &rerr)
		assert.Equal(t, http.StatusServiceUnavailable, rerr.Status)
	})

	t.Run("Transport errors pass through wrapped", func(t *testing.T) {
		cause := errors.New("context deadline exceeded (Client.Timeout)")
		err := mapRequestError(cause)
		var rerr *RequestError
		assert.False(t, errors.As(err, &rerr))
		assert.ErrorIs(t, err, cause)
	})
}

func TestExtractTextFromResponse(t *testing.T) {
	okResp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []genai.Part{genai.Text(`{"overview"`), genai.Text(`: {}}`)},
			},
		}},
	}

	text, err := extractTextFromResponse(okResp)
	require.NoError(t, err)
	assert.Equal(t, `{"overview": {}}`, text)

	empties := []*genai.GenerateContentResponse{
		{},
		{Candidates: []*genai.Candidate{{}}},
		{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
	}
	for _, resp := range empties {
		_, err := extractTextFromResponse(resp)
		var rerr *RequestError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, CodeGenerationFailed, rerr.Code)
		assert.Equal(t, http.StatusInternalServerError, rerr.Status)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, "custom-model", DefaultConfig().WithModel("custom-model").Model)
	assert.Equal(t, "gemini-2.5-flash", DefaultConfig().WithModel("").Model)
}
