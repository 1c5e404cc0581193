package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// postAnswerWithAuth sends POST /answer with the given Authorization header.
func postAnswerWithAuth(s *Server, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/answer", strings.NewReader(`{"question":"q"}`))
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// TestAuth_Disabled verifies that an empty API key passes requests through.
func TestAuth_Disabled(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAnswerer{}, nil)

	w := postAnswerWithAuth(s, "")

	if w.Code == http.StatusUnauthorized {
		t.Errorf("auth disabled: expected request to pass, got 401")
	}
}

// TestAuth_MissingToken verifies a 401 with a Bearer challenge when the
// header is absent.
func TestAuth_MissingToken(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAnswerer{}, func(cfg *Config) {
		cfg.APIKey = "secret"
	})

	w := postAnswerWithAuth(s, "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if challenge := w.Header().Get("WWW-Authenticate"); !strings.Contains(challenge, "Bearer") {
		t.Errorf("expected Bearer challenge, got %q", challenge)
	}
}

// TestAuth_InvalidToken verifies a 401 for a wrong token.
func TestAuth_InvalidToken(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAnswerer{}, func(cfg *Config) {
		cfg.APIKey = "secret"
	})

	w := postAnswerWithAuth(s, "Bearer wrong")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid token, got %d", w.Code)
	}
}

// TestAuth_ValidToken verifies the correct token reaches the handler.
func TestAuth_ValidToken(t *testing.T) {
	t.Parallel()

	svc := &fakeAnswerer{}
	s := newTestServer(t, svc, func(cfg *Config) {
		cfg.APIKey = "secret"
	})

	w := postAnswerWithAuth(s, "Bearer secret")

	if w.Code == http.StatusUnauthorized {
		t.Fatalf("expected valid token to pass, got 401")
	}
	if len(svc.questions) != 1 {
		t.Errorf("expected the handler to run, got %d calls", len(svc.questions))
	}
}

// TestAuth_CaseInsensitiveScheme verifies "bearer" is accepted regardless of
// case.
func TestAuth_CaseInsensitiveScheme(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAnswerer{}, func(cfg *Config) {
		cfg.APIKey = "secret"
	})

	w := postAnswerWithAuth(s, "bearer secret")

	if w.Code == http.StatusUnauthorized {
		t.Errorf("expected case-insensitive scheme to pass, got 401")
	}
}

// TestAuth_UnprotectedRoutes verifies health and readiness stay open when
// auth is enabled.
func TestAuth_UnprotectedRoutes(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAnswerer{}, func(cfg *Config) {
		cfg.APIKey = "secret"
	})

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		if w.Code == http.StatusUnauthorized {
			t.Errorf("%s: expected no auth requirement, got 401", path)
		}
	}
}
