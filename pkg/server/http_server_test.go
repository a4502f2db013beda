package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func jsonStub(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

func TestHandler_AllowsConfiguredOrigin(t *testing.T) {
	s := &HTTPServer{
		NotFoundHandler:         jsonStub(http.StatusNotFound),
		MethodNotAllowedHandler: jsonStub(http.StatusMethodNotAllowed),
		AllowedOrigins:          []string{"http://localhost:3200"},
	}

	req := httptest.NewRequest(http.MethodOptions, "/catalog/api/requests", nil)
	req.Header.Set("Origin", "http://localhost:3200")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, "http://localhost:3200", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_RejectsUnknownOrigin(t *testing.T) {
	s := &HTTPServer{
		NotFoundHandler:         jsonStub(http.StatusNotFound),
		MethodNotAllowedHandler: jsonStub(http.StatusMethodNotAllowed),
		AllowedOrigins:          []string{"http://localhost:3200"},
	}

	req := httptest.NewRequest(http.MethodOptions, "/catalog/api/requests", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_WithoutOriginsServesDirectly(t *testing.T) {
	s := &HTTPServer{
		NotFoundHandler:         jsonStub(http.StatusNotFound),
		MethodNotAllowedHandler: jsonStub(http.StatusMethodNotAllowed),
	}

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req.Header.Set("Origin", "http://localhost:3200")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
