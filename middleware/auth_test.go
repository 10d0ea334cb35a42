package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

// mintToken builds a syntactically valid JWT signed with a key Clerk does not
// know about. Verification must reject it.
func mintToken(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("not-clerks-key"))
	require.NoError(t, err)
	return signed
}

func TestClerkAuthMiddlewareMissingHeader(t *testing.T) {
	next, called := okHandler()
	rec := httptest.NewRecorder()

	ClerkAuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/membership", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestClerkAuthMiddlewareMalformedHeader(t *testing.T) {
	next, called := okHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/membership", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()

	ClerkAuthMiddleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestClerkAuthMiddlewareRejectsForeignSignature(t *testing.T) {
	next, called := okHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/membership", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "user_1"))
	rec := httptest.NewRecorder()

	ClerkAuthMiddleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	var gotID string
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = GetClerkID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()

	OptionalAuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tutors/t1/reviews", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotOK)
	assert.Empty(t, gotID)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	t.Setenv("ADMIN_CLERK_IDS", "user_admin, user_admin2")

	next, called := okHandler()
	handler := AdminOnlyMiddleware(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/memberships/pending", nil)
	req = req.WithContext(context.WithValue(req.Context(), ClerkIDKey, "user_regular"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, *called)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/memberships/pending", nil)
	req = req.WithContext(context.WithValue(req.Context(), ClerkIDKey, "user_admin2"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
}

func TestAdminOnlyRequiresAuthFirst(t *testing.T) {
	next, called := okHandler()
	rec := httptest.NewRecorder()

	AdminOnlyMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/memberships/pending", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}
