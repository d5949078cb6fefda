// Package transcript fetches YouTube transcripts from the third-party
// transcript API used by the request-creation entrypoint.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DefaultTimeout bounds the transcript API call.
const DefaultTimeout = 30 * time.Second

const defaultBaseURL = "https://api.supadata.ai/v1/youtube/transcript"

// Error represents a transcript fetch failure.
type Error struct {
	URL     string
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transcript error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("transcript error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Client calls the transcript API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a transcript client with the default timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
}

// WithBaseURL overrides the API endpoint, primarily for tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// transcriptResponse is the API's plain-text transcript shape.
type transcriptResponse struct {
	Content string `json:"content"`
	Lang    string `json:"lang,omitempty"`
}

// Fetch retrieves the transcript text for a YouTube video URL.
func (c *Client) Fetch(ctx context.Context, videoURL string) (string, error) {
	if c.apiKey == "" {
		return "", &Error{URL: videoURL, Message: "no transcript API key configured"}
	}
	if _, ok := VideoID(videoURL); !ok {
		return "", &Error{URL: videoURL, Message: "not a recognizable YouTube URL"}
	}

	endpoint := fmt.Sprintf("%s?url=%s&text=true", c.baseURL, url.QueryEscape(videoURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &Error{URL: videoURL, Message: "failed to build request", Cause: err}
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{URL: videoURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", &Error{URL: videoURL, Status: resp.StatusCode, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{
			URL:     videoURL,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("API returned HTTP %d: %s", resp.StatusCode, snippet(body)),
		}
	}

	var tr transcriptResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &Error{URL: videoURL, Status: resp.StatusCode, Message: "invalid response JSON", Cause: err}
	}
	if strings.TrimSpace(tr.Content) == "" {
		return "", &Error{URL: videoURL, Status: resp.StatusCode, Message: "empty transcript"}
	}

	return tr.Content, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// VideoID extracts the 11-character video identifier from the common YouTube
// URL shapes: watch?v=, youtu.be/, shorts/, embed/.
func VideoID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		return id, videoIDRe.MatchString(id)
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, videoIDRe.MatchString(id)
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
				return id, videoIDRe.MatchString(id)
			}
		}
	}

	return "", false
}
