package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	userID uuid.UUID
	err    error
	seen   string
}

func (v *fakeValidator) ValidateToken(tokenString string) (uuid.UUID, error) {
	v.seen = tokenString
	return v.userID, v.err
}

func TestAuthPassesUserIDToHandler(t *testing.T) {
	userID := uuid.New()
	validator := &fakeValidator{userID: userID}

	var gotID uuid.UUID
	handler := Auth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserID(r)
		require.NoError(t, err)
		gotID = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/blueprints", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "some-token", validator.seen)
}

func TestAuthRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		verr   error
	}{
		{"No header", "", nil},
		{"Not bearer", "Basic dXNlcjpwYXNz", nil},
		{"Missing token", "Bearer", nil},
		{"Too many parts", "Bearer one two", nil},
		{"Validator rejects", "Bearer bad-token", errors.New("invalid token")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &fakeValidator{userID: uuid.New(), err: tt.verr}
			called := false
			handler := Auth(validator)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/blueprints", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
		})
	}
}

func TestAuthAcceptsLowercaseBearer(t *testing.T) {
	validator := &fakeValidator{userID: uuid.New()}
	handler := Auth(validator)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/blueprints", nil)
	req.Header.Set("Authorization", "bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetUserIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetUserID(req)
	assert.Error(t, err)
}
