package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
)

type ValidatorMock struct {
	mock.Mock
}

func (m *ValidatorMock) ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*jwt.CustomClaims)
	return claims, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func claimsFor(userID string) *jwt.CustomClaims {
	c := &jwt.CustomClaims{Email: "user@example.com"}
	c.Subject = userID
	c.ID = "jti-1"
	return c
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		mockClaims     *jwt.CustomClaims
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token validation error",
			authHeader:     "Bearer token",
			mockErr:        errors.New("token revoked"),
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "claims without subject",
			authHeader:     "Bearer token",
			mockClaims:     claimsFor(""),
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockClaims:     claimsFor("user-1"),
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := new(ValidatorMock)
			if tt.mockClaims != nil || tt.mockErr != nil {
				validator.On("ValidateToken", mock.Anything, strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.mockClaims, tt.mockErr).Once()
			}

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				userID, ok := middlewarectx.UserIDFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "user-1", userID)
				claims, ok := middlewarectx.ClaimsFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "jti-1", claims.ID)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middlewarectx.JWTMiddleware(validator, newNoopLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			validator.AssertExpectations(t)
		})
	}
}

func TestUserIDFromContext_Empty(t *testing.T) {
	_, ok := middlewarectx.UserIDFromContext(context.Background())
	assert.False(t, ok)
	_, ok = middlewarectx.ClaimsFromContext(context.Background())
	assert.False(t, ok)
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := middlewarectx.RateLimitMiddleware(0.001, 2, newNoopLogger())(next)

	var codes []int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type observation struct {
	route, method string
	status        int
}

type observerStub struct {
	got []observation
}

func (o *observerStub) ObserveHTTP(route, method string, status int, _ time.Duration) {
	o.got = append(o.got, observation{route: route, method: method, status: status})
}

func TestMetricsMiddleware(t *testing.T) {
	obs := &observerStub{}
	r := chi.NewRouter()
	r.Use(middlewarectx.MetricsMiddleware(obs))
	r.Get("/subscriptions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/subscriptions/abc", "/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, obs.got, 2)
	assert.Equal(t, observation{route: "/subscriptions/{id}", method: http.MethodGet, status: http.StatusNotFound}, obs.got[0])
	assert.Equal(t, observation{route: "/health", method: http.MethodGet, status: http.StatusOK}, obs.got[1])
}
