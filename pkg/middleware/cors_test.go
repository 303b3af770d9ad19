package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		allowed        []string
		method         string
		origin         string
		expectedCode   int
		expectedOrigin string
	}{
		{
			name:           "Wildcard",
			allowed:        []string{"*"},
			method:         http.MethodGet,
			origin:         "http://localhost:5173",
			expectedCode:   http.StatusOK,
			expectedOrigin: "*",
		},
		{
			name:           "Listed origin",
			allowed:        []string{"https://learnhub.com.np"},
			method:         http.MethodGet,
			origin:         "https://LearnHub.com.np",
			expectedCode:   http.StatusOK,
			expectedOrigin: "https://LearnHub.com.np",
		},
		{
			name:           "Unlisted origin",
			allowed:        []string{"https://learnhub.com.np"},
			method:         http.MethodGet,
			origin:         "https://evil.example",
			expectedCode:   http.StatusOK,
			expectedOrigin: "",
		},
		{
			name:           "Preflight",
			allowed:        []string{"*"},
			method:         http.MethodOptions,
			origin:         "http://localhost:5173",
			expectedCode:   http.StatusNoContent,
			expectedOrigin: "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/packages", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORS(tt.allowed)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Equal(t, tt.expectedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
