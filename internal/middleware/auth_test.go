package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockHandler is a simple handler for testing
func mockHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("success"))
}

func serve(token, authHeader string) *httptest.ResponseRecorder {
	handler := Auth(token)(http.HandlerFunc(mockHandler))

	req := httptest.NewRequest("POST", "/api/v1/run", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// TestAuth_ValidRequest tests authentication with valid token
func TestAuth_ValidRequest(t *testing.T) {
	w := serve("test-secret-token", "Bearer test-secret-token")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("Expected 'success', got '%s'", w.Body.String())
	}
}

// TestAuth_Rejected tests every way a request can fail authentication
func TestAuth_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
	}{
		{"invalid token", "test-secret-token", "Bearer wrong-token"},
		{"missing header", "test-secret-token", ""},
		{"wrong scheme", "test-secret-token", "Basic test-secret-token"},
		{"partial token", "test-secret-token", "Bearer test-secret"},
		{"token with suffix", "test-secret-token", "Bearer test-secret-token-extra"},
		{"no token configured", "", "Bearer "},
		{"no token configured and no header", "", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := serve(test.token, test.header)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", w.Code)
			}
			if w.Header().Get("WWW-Authenticate") == "" {
				t.Error("Expected WWW-Authenticate header")
			}
		})
	}
}
