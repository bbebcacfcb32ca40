package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/LionGab/lyla-erl/internal/identity"
)

func signedUserToken(t *testing.T, secret, email string) string {
	t.Helper()
	claims := userClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestUserAuthValidToken(t *testing.T) {
	mw := UserAuth("secret", false)
	req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
	req.Header.Set("Authorization", "Bearer "+signedUserToken(t, "secret", "maria@exemplo.com"))
	rec := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		email, ok := identity.UserEmailFromContext(r.Context())
		if !ok || email != "maria@exemplo.com" {
			t.Fatalf("expected email in context, got %q (ok=%v)", email, ok)
		}
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler was not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestUserAuthMissingHeaderRejected(t *testing.T) {
	mw := UserAuth("secret", false)
	req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserAuthMissingHeaderAnonymousAllowed(t *testing.T) {
	mw := UserAuth("secret", true)
	req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
	rec := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := identity.UserEmailFromContext(r.Context()); ok {
			t.Fatal("anonymous request must not carry an email")
		}
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler was not called")
	}
}

func TestUserAuthWrongSecret(t *testing.T) {
	mw := UserAuth("secret", true)
	req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
	req.Header.Set("Authorization", "Bearer "+signedUserToken(t, "wrong", "maria@exemplo.com"))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserAuthTokenWithoutEmail(t *testing.T) {
	mw := UserAuth("secret", true)
	req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
	req.Header.Set("Authorization", "Bearer "+signedUserToken(t, "secret", ""))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
