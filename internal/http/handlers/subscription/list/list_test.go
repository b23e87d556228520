package list

import (
	"context"
	"errors"
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

func (m *MockService) List(ctx context.Context, userID string) ([]models.SubscriptionView, error) {
	args := m.Called(ctx, userID)
	if res := args.Get(0); res != nil {
		return res.([]models.SubscriptionView), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "список подписок",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "user-1").Return([]models.SubscriptionView{
					{Subscription: models.Subscription{ID: "a"}, NextBillingDate: "2024-03-01"},
					{Subscription: models.Subscription{ID: "b"}, NextBillingDate: "2024-03-05"},
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"next_billing_date":"2024-03-05"`,
		},
		{
			name: "пустой список",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "user-1").Return(nil, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":[]}`,
		},
		{
			name: "ошибка сервиса",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "user-1").Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not list subscriptions"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, "user-1"))
			w := httptest.NewRecorder()

			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
