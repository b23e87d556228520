package me

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Me(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func TestMeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		user           *models.User
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "профиль",
			user:           &models.User{ID: "user-1", Email: "user@example.com", Name: "User", ProviderAccountID: "secret-sub"},
			expectedStatus: http.StatusOK,
			expectedBody:   `"email":"user@example.com"`,
		},
		{
			name:           "пользователь удалён",
			err:            models.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockService)
			m.On("Me", mock.Anything, "user-1").Return(tt.user, tt.err).Once()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, "user-1"))
			w := httptest.NewRecorder()

			New(logger, m).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			assert.NotContains(t, w.Body.String(), "secret-sub")
			m.AssertExpectations(t)
		})
	}
}
