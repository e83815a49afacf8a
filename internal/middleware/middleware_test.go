package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/interviews/internal/auth"
	"github.com/mentorhub/interviews/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	svc := auth.NewService(&config.JWTConfig{Secret: "secret"})
	userID := uuid.New()
	token, err := svc.GenerateToken(userID, []string{auth.RoleCandidate}, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	var seen uuid.UUID
	handler := NewAuthMiddleware(svc).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserID(r)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	if seen != userID {
		t.Errorf("Expected principal %s in context, got %s", userID, seen)
	}
}

func TestRequireAnyRole(t *testing.T) {
	handler := RequireAnyRole(auth.RoleCompany, auth.RoleAdmin)(okHandler())

	tests := []struct {
		name      string
		principal *auth.Principal
		want      int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"candidate", &auth.Principal{UserID: uuid.New(), Roles: []string{auth.RoleCandidate}}, http.StatusForbidden},
		{"company", &auth.Principal{UserID: uuid.New(), Roles: []string{auth.RoleCompany}}, http.StatusOK},
		{"admin", &auth.Principal{UserID: uuid.New(), Roles: []string{auth.RoleCandidate, auth.RoleAdmin}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(&config.RateLimitConfig{Enabled: true, Requests: 2, Duration: time.Minute})
	defer rl.Stop()

	now := time.Now()
	if !rl.allow("10.0.0.1", now) || !rl.allow("10.0.0.1", now) {
		t.Fatal("First two requests should pass")
	}
	if rl.allow("10.0.0.1", now) {
		t.Error("Third request in the window should be limited")
	}
	if !rl.allow("10.0.0.2", now) {
		t.Error("Other clients have their own budget")
	}
	if !rl.allow("10.0.0.1", now.Add(time.Minute)) {
		t.Error("A new window should reset the budget")
	}

	handler := rl.Limit(okHandler())
	var last int
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", last)
	}
}

func TestCORSPreflight(t *testing.T) {
	cors := NewCORSMiddleware(&config.CORSConfig{
		AllowedOrigins:   []string{"https://app.example"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := cors.Handler(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/interviews/start", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Unexpected allow origin %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("Unexpected allow methods %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("Unknown origins must not be allowed")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Errorf("Expected remote host, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Errorf("Expected first forwarded address, got %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interviews/x", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Missing security headers: %v", rec.Header())
	}
}
