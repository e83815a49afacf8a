package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/interviews/internal/auth"
	"github.com/mentorhub/interviews/internal/config"
)

// JWTSecret is the signing secret used across tests
const JWTSecret = "test-secret-key-for-testing-only"

// AuthHelper provides JWT token generation for tests
type AuthHelper struct {
	Service *auth.Service
}

// NewAuthHelper creates a new auth helper
func NewAuthHelper() *AuthHelper {
	return &AuthHelper{
		Service: auth.NewService(&config.JWTConfig{Secret: JWTSecret}),
	}
}

// GenerateToken generates a JWT token for a user with specified roles
func (h *AuthHelper) GenerateToken(t *testing.T, userID uuid.UUID, roles ...string) string {
	t.Helper()

	token, err := h.Service.GenerateToken(userID, roles, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

// AddAuthHeader adds an authorization header to the request
func (h *AuthHelper) AddAuthHeader(t *testing.T, req *http.Request, userID uuid.UUID, roles ...string) {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+h.GenerateToken(t, userID, roles...))
}

// TestResponse holds response data for assertions
type TestResponse struct {
	*httptest.ResponseRecorder
}

// NewTestResponse creates a new test response recorder
func NewTestResponse() *TestResponse {
	return &TestResponse{
		ResponseRecorder: httptest.NewRecorder(),
	}
}

// AssertStatus asserts the HTTP status code
func (r *TestResponse) AssertStatus(t *testing.T, expected int) {
	t.Helper()

	if r.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, r.Code, r.Body.String())
	}
}
