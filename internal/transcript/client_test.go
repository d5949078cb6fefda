package transcript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, testVideoURL, r.URL.Query().Get("url"))
		assert.Equal(t, "true", r.URL.Query().Get("text"))
		_, _ = w.Write([]byte(`{"content": "hello world transcript", "lang": "en"}`))
	}))
	defer srv.Close()

	c := NewClient("secret").WithBaseURL(srv.URL)
	got, err := c.Fetch(context.Background(), testVideoURL)
	require.NoError(t, err)
	assert.Equal(t, "hello world transcript", got)
}

func TestFetchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "video not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("secret").WithBaseURL(srv.URL)
	_, err := c.Fetch(context.Background(), testVideoURL)

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusNotFound, te.Status)
	assert.Contains(t, te.Message, "404")
}

func TestFetchEmptyTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content": "   "}`))
	}))
	defer srv.Close()

	c := NewClient("secret").WithBaseURL(srv.URL)
	_, err := c.Fetch(context.Background(), testVideoURL)

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Message, "empty transcript")
}

func TestFetchRejectsBadInput(t *testing.T) {
	c := NewClient("")
	_, err := c.Fetch(context.Background(), testVideoURL)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Message, "no transcript API key")

	c = NewClient("secret")
	_, err = c.Fetch(context.Background(), "https://example.com/not-youtube")
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Message, "not a recognizable YouTube URL")
}

func TestVideoID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{"Watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"Short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"Shorts", "https://youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"Embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"Live", "https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"Mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"Watch with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"ID too short", "https://youtu.be/short", "", false},
		{"Not YouTube", "https://vimeo.com/12345", "", false},
		{"Not a URL", "just some text", "", false},
		{"Empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := VideoID(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}
