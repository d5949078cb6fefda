package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client is an abstraction over the generative model provider.
type Client interface {
	// GenerateBlueprint issues a single generation call and returns the raw
	// model text. No retries happen at this layer.
	GenerateBlueprint(ctx context.Context, prompt string) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a model client. An empty API key yields a client whose
// calls fail immediately with a service-unavailable error, without ever
// touching the network.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return &unconfiguredClient{}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, config: config}, nil
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// GenerateBlueprint sends one generation request with the fixed blueprint
// configuration: temperature, token cap, JSON response MIME type, and a
// response schema covering the expected plan sections.
func (c *GeminiClient) GenerateBlueprint(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(c.config.Temperature)
	model.SetMaxOutputTokens(c.config.MaxOutputTokens)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = blueprintResponseSchema()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", mapRequestError(err)
	}

	return extractTextFromResponse(resp)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// unconfiguredClient stands in when no API key is configured.
type unconfiguredClient struct{}

func (c *unconfiguredClient) GenerateBlueprint(context.Context, string) (string, error) {
	return "", &RequestError{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeServiceUnavailable,
		Message: "no model API key configured",
	}
}

func (c *unconfiguredClient) Close() error { return nil }

// mapRequestError converts provider failures into typed request errors.
// HTTP 429 maps to a rate-limit error, all other non-2xx to service
// unavailable, carrying the raw error body as details. Transport failures
// without an HTTP status pass through wrapped so their message survives for
// timeout classification.
func mapRequestError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		details := strings.TrimSpace(gerr.Body)
		if gerr.Code == http.StatusTooManyRequests {
			return &RequestError{
				Status:  http.StatusTooManyRequests,
				Code:    CodeRateLimited,
				Message: "model rate limit exceeded",
				Details: details,
				Cause:   err,
			}
		}
		return &RequestError{
			Status:  http.StatusServiceUnavailable,
			Code:    CodeServiceUnavailable,
			Message: fmt.Sprintf("model endpoint returned HTTP %d", gerr.Code),
			Details: details,
			Cause:   err,
		}
	}
	return fmt.Errorf("failed to generate content: %w", err)
}

// extractTextFromResponse joins the text parts of the first candidate. An
// otherwise-successful response with no text is a generation failure.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	emptyErr := &RequestError{
		Status:  http.StatusInternalServerError,
		Code:    CodeGenerationFailed,
		Message: "AI failed to generate a response",
	}

	if len(resp.Candidates) == 0 {
		return "", emptyErr
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", emptyErr
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", emptyErr
	}

	return strings.Join(parts, ""), nil
}
