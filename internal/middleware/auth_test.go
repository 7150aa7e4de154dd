package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func authRequest(t *testing.T, j *JWTAuth, authorization string, inner http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	j.Middleware(inner).ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAcceptsOwnTokens(t *testing.T) {
	j := NewJWTAuth("test-secret")
	userID := uuid.New()

	token, err := j.GenerateAccessToken(userID, "jane@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	var gotID uuid.UUID
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := authRequest(t, j, "Bearer "+token, inner)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a valid token, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotID != userID {
		t.Fatalf("expected user %s in context, got %s", userID, gotID)
	}
}

func TestJWTAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	j := NewJWTAuth("test-secret")
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run without credentials")
	})

	for _, header := range []string{"", "Basic abc", "Bearer"} {
		if rec := authRequest(t, j, header, inner); rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestJWTAuthDistinguishesExpiredTokens(t *testing.T) {
	j := NewJWTAuth("test-secret")

	claims := jwt.MapClaims{
		"user_id": uuid.New().String(),
		"email":   "jane@example.com",
		"exp":     time.Now().Add(-time.Minute).Unix(),
		"iat":     time.Now().Add(-16 * time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run with an expired token")
	})

	rec := authRequest(t, j, "Bearer "+token, inner)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an expired token, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "TOKEN_EXPIRED") {
		t.Fatalf("expected TOKEN_EXPIRED code, got %s", rec.Body.String())
	}
}

func TestJWTAuthRejectsForeignSignature(t *testing.T) {
	j := NewJWTAuth("test-secret")

	other := NewJWTAuth("other-secret")
	token, err := other.GenerateAccessToken(uuid.New(), "jane@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run with a foreign signature")
	})

	rec := authRequest(t, j, "Bearer "+token, inner)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a foreign signature, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "TOKEN_EXPIRED") {
		t.Fatalf("a bad signature must not report expiry: %s", rec.Body.String())
	}
}
