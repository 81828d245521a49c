// pkg/http/middleware_test.go
package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/models"
)

func TestCommonMiddleware_CORS(t *testing.T) {
	log := logger.NewTestLogger()

	corsConfig := models.CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
	}

	handler := CommonMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("OK"))
		if err != nil {
			t.Errorf("Error writing response: %v", err)

			return
		}
	}), corsConfig, log)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")

	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("CORS origin not set correctly: got %v", rr.Header().Get("Access-Control-Allow-Origin"))
	}

	if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("CORS credentials not set: got %v", rr.Header().Get("Access-Control-Allow-Credentials"))
	}

	// Test unallowed origin
	req = httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	req.Header.Set("Origin", "http://evil.com")

	rr = httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") == "http://evil.com" {
		t.Errorf("CORS allowed an unpermitted origin")
	}
}

func TestCommonMiddleware_WildcardOriginAndPreflight(t *testing.T) {
	log := logger.NewTestLogger()

	corsConfig := models.CORSConfig{AllowedOrigins: []string{"*"}}

	handler := CommonMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("preflight request reached the inner handler")
	}), corsConfig, log)

	req := httptest.NewRequest(http.MethodOptions, "/api/devices", http.NoBody)
	req.Header.Set("Origin", "http://anywhere.example")

	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("preflight returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	if rr.Header().Get("Access-Control-Allow-Origin") != "http://anywhere.example" {
		t.Errorf("wildcard origin not echoed: got %v", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string

	handler := RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	// Assigned when the client does not supply one.
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if seen == "" {
		t.Error("request ID was not stored in the context")
	}

	if rr.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header %q does not match context ID %q", rr.Header().Get(RequestIDHeader), seen)
	}

	// A client-supplied ID is kept.
	req = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set(RequestIDHeader, "client-chosen-id")

	rr = httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if seen != "client-chosen-id" {
		t.Errorf("client-supplied request ID was replaced: got %q", seen)
	}
}

func TestAPIKeyMiddleware_Unauthorized(t *testing.T) {
	log := logger.NewTestLogger()

	opts := APIKeyOptions{
		APIKey:          "test-key",
		ExcludePaths:    []string{"/health"},
		LogUnauthorized: true,
		Logger:          log,
	}

	middleware := APIKeyMiddlewareWithOptions(opts)
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("OK"))
		if err != nil {
			t.Errorf("Error writing response: %v", err)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/test", http.NoBody)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusUnauthorized {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
	}
}

func TestAPIKeyMiddleware_Accepts(t *testing.T) {
	handler := APIKeyMiddleware("test-key")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		path   string
		status int
	}{
		{
			name:   "header key",
			setup:  func(r *http.Request) { r.Header.Set("X-API-Key", "test-key") },
			path:   "/api/test",
			status: http.StatusOK,
		},
		{
			name:   "query key",
			setup:  func(_ *http.Request) {},
			path:   "/api/summary/stream?api_key=test-key",
			status: http.StatusOK,
		},
		{
			name:   "wrong key",
			setup:  func(r *http.Request) { r.Header.Set("X-API-Key", "nope") },
			path:   "/api/test",
			status: http.StatusUnauthorized,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, http.NoBody)
			tc.setup(req)

			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Errorf("got status %v want %v", rr.Code, tc.status)
			}
		})
	}
}

func TestAPIKeyMiddleware_EmptyKeyDisablesCheck(t *testing.T) {
	handler := APIKeyMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/test", http.NoBody)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("request was rejected with no key configured: got %v", rr.Code)
	}
}

func TestAPIKeyMiddleware_ExcludedPath(t *testing.T) {
	opts := APIKeyOptions{
		APIKey:       "test-key",
		ExcludePaths: []string{"/health"},
	}

	handler := APIKeyMiddlewareWithOptions(opts)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("excluded path was rejected: got %v", rr.Code)
	}
}
