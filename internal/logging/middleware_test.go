package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		if id, ok := c.Request.Context().Value(requestIDKey{}).(string); ok {
			seen = id
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name     string
		incoming string
	}{
		{"generated", ""},
		{"propagated", "req-123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if got == "" || got != seen {
				t.Fatalf("response id %q, context id %q", got, seen)
			}
			if tt.incoming != "" && got != tt.incoming {
				t.Errorf("request id = %q, want %q", got, tt.incoming)
			}
		})
	}
}
