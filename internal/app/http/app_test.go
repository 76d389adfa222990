package httpapp

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func preflight(s *Server, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/login", nil)
	req.Header.Set(echo.HeaderOrigin, origin)
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	return rec
}

func TestNew_CORSUsesConfiguredOrigin(t *testing.T) {
	s := New(testLogger(), "secret", "https://panel.example.com", "localhost", "0", nil)

	t.Run("configured origin is allowed", func(t *testing.T) {
		rec := preflight(s, "https://panel.example.com")
		assert.Equal(t, "https://panel.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})

	t.Run("foreign origin is rejected", func(t *testing.T) {
		rec := preflight(s, "https://evil.example.org")
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})
}

func TestNew_CORSDefaultsToAnyOrigin(t *testing.T) {
	s := New(testLogger(), "secret", "", "localhost", "0", nil)

	rec := preflight(s, "https://panel.example.com")
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
