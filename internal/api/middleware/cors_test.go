package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveCORS(allowed, method, origin string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(CORSMiddleware(allowed))
	r.GET("/status", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(method, "/status", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSMiddleware_AllowAll(t *testing.T) {
	w := serveCORS("*", http.MethodGet, "http://example.com")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected ACAO header '*', got '%s'", origin)
	}
	if vary := w.Header().Get("Vary"); vary == "Origin" {
		t.Error("should not set Vary: Origin when using wildcard")
	}
}

func TestCORSMiddleware_SpecificOrigin(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{"allowed", "http://allowed.com", "http://allowed.com"},
		{"second allowed", "http://also-allowed.com", "http://also-allowed.com"},
		{"not allowed", "http://evil.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveCORS("http://allowed.com, http://also-allowed.com", http.MethodGet, tt.origin)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("expected ACAO '%s', got '%s'", tt.wantOrigin, got)
			}
			if vary := w.Header().Get("Vary"); vary != "Origin" {
				t.Errorf("expected Vary: Origin, got '%s'", vary)
			}
		})
	}
}

func TestCORSMiddleware_NoOriginHeader(t *testing.T) {
	w := serveCORS("http://allowed.com", http.MethodGet, "")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no ACAO header, got '%s'", got)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	w := serveCORS("*", http.MethodOptions, "http://example.com")

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204 for preflight, got %d", w.Code)
	}
	if methods := w.Header().Get("Access-Control-Allow-Methods"); methods != "GET, HEAD, OPTIONS" {
		t.Errorf("unexpected allowed methods '%s'", methods)
	}
}
