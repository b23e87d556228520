package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *RepoMock) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) UpdateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) DeleteSubscription(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *RepoMock) GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentMethod), args.Error(1)
}

func (m *RepoMock) ListPaymentMethodsByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentMethod), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const (
	ownerID = "11111111-1111-1111-1111-111111111111"
	otherID = "22222222-2222-2222-2222-222222222222"
	pmID    = "33333333-3333-3333-3333-333333333333"
	subID   = "44444444-4444-4444-4444-444444444444"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(r *RepoMock, c *CacheMock) *Service {
	s := NewService(r, c, time.UTC, time.Hour, newNoopLogger())
	s.now = func() time.Time { return fixedNow }
	s.newID = func() string { return subID }
	return s
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func storedSubscription(userID string) *models.Subscription {
	sub, _ := models.NewSubscription(subID, userID, models.SubscriptionParams{
		ServiceName:  "Netflix",
		Amount:       990,
		BillingCycle: "monthly",
		BaseDate:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}, fixedNow.AddDate(0, -1, 0))
	return &sub
}

func TestService_Create(t *testing.T) {
	validReq := models.SubscriptionRequest{
		ServiceName:  "Netflix",
		Amount:       intPtr(990),
		BillingCycle: "monthly",
		BaseDate:     "2024-01-31",
	}

	tests := []struct {
		name       string
		req        models.SubscriptionRequest
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
		wantNext   string
	}{
		{
			name: "success create",
			req:  validReq,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
					return s.ID == subID && s.UserID == ownerID && s.ServiceName == "Netflix"
				})).Return(nil).Once()
				c.On("Set", mock.Anything, "subscription:"+subID, mock.Anything, time.Hour).Return(nil).Once()
			},
			wantNext: "2024-03-31",
		},
		{
			name: "cache failure is not surfaced",
			req:  validReq,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("CreateSubscription", mock.Anything, mock.Anything).Return(nil).Once()
				c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(errors.New("redis down")).Once()
			},
			wantNext: "2024-03-31",
		},
		{
			name: "invalid date",
			req: models.SubscriptionRequest{
				ServiceName: "Netflix", Amount: intPtr(1), BillingCycle: "monthly", BaseDate: "31-01-2024",
			},
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			wantErr:    models.ErrInvalidDate,
		},
		{
			name: "amount out of range",
			req: models.SubscriptionRequest{
				ServiceName: "Netflix", Amount: intPtr(1_000_001), BillingCycle: "monthly", BaseDate: "2024-01-31",
			},
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			wantErr:    models.ErrInvalidAmount,
		},
		{
			name: "foreign payment method",
			req: models.SubscriptionRequest{
				ServiceName: "Netflix", Amount: intPtr(1), BillingCycle: "monthly", BaseDate: "2024-01-31",
				PaymentMethodID: strPtr(pmID),
			},
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("GetPaymentMethod", mock.Anything, pmID).
					Return(&models.PaymentMethod{ID: pmID, UserID: otherID, Name: "Visa"}, nil).Once()
			},
			wantErr: models.ErrForbidden,
		},
		{
			name: "missing payment method",
			req: models.SubscriptionRequest{
				ServiceName: "Netflix", Amount: intPtr(1), BillingCycle: "monthly", BaseDate: "2024-01-31",
				PaymentMethodID: strPtr(pmID),
			},
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("GetPaymentMethod", mock.Anything, pmID).Return(nil, nil).Once()
			},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c := new(RepoMock), new(CacheMock)
			tt.setupMocks(r, c)
			svc := newTestService(r, c)

			got, err := svc.Create(context.Background(), ownerID, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				r.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, subID, got.ID)
			assert.Equal(t, "2024-01-31", got.BaseDate)
			assert.Equal(t, tt.wantNext, got.NextBillingDate)
			r.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestService_Read(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name:   "cache miss reads repository and fills cache",
			userID: ownerID,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "subscription:"+subID, mock.Anything).Return(false, nil).Once()
				r.On("GetSubscription", mock.Anything, subID).Return(storedSubscription(ownerID), nil).Once()
				c.On("Set", mock.Anything, "subscription:"+subID, mock.Anything, time.Hour).Return(nil).Once()
			},
		},
		{
			name:   "cache error falls back to repository",
			userID: ownerID,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down")).Once()
				r.On("GetSubscription", mock.Anything, subID).Return(storedSubscription(ownerID), nil).Once()
				c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:   "not found",
			userID: ownerID,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
				r.On("GetSubscription", mock.Anything, subID).Return(nil, nil).Once()
			},
			wantErr: models.ErrNotFound,
		},
		{
			name:   "other owner",
			userID: otherID,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
				r.On("GetSubscription", mock.Anything, subID).Return(storedSubscription(ownerID), nil).Once()
				c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			},
			wantErr: models.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c := new(RepoMock), new(CacheMock)
			tt.setupMocks(r, c)
			svc := newTestService(r, c)

			got, err := svc.Read(context.Background(), tt.userID, subID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "2024-03-31", got.NextBillingDate)
			assert.Equal(t, 990, got.MonthlyAmount)
			assert.Equal(t, 11880, got.YearlyAmount)
			r.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestService_Update(t *testing.T) {
	r, c := new(RepoMock), new(CacheMock)
	c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
	r.On("GetSubscription", mock.Anything, subID).Return(storedSubscription(ownerID), nil).Once()
	c.On("Set", mock.Anything, "subscription:"+subID, mock.Anything, time.Hour).Return(nil).Twice()
	r.On("UpdateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
		return s.ID == subID && s.BillingCycle == models.BillingCycleYearly && s.UpdatedAt.Equal(fixedNow)
	})).Return(1, nil).Once()

	svc := newTestService(r, c)
	got, err := svc.Update(context.Background(), ownerID, subID, models.SubscriptionRequest{
		ServiceName:  "Netflix Premium",
		Amount:       intPtr(12000),
		BillingCycle: "yearly",
		BaseDate:     "2023-02-28",
	})
	require.NoError(t, err)
	assert.Equal(t, "Netflix Premium", got.ServiceName)
	assert.Equal(t, "2025-02-28", got.NextBillingDate)
	assert.Equal(t, 1000, got.MonthlyAmount)
	r.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestService_Remove(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, c := new(RepoMock), new(CacheMock)
		c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
		r.On("GetSubscription", mock.Anything, subID).Return(storedSubscription(ownerID), nil).Once()
		c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		r.On("DeleteSubscription", mock.Anything, subID).Return(1, nil).Once()
		c.On("Invalidate", mock.Anything, []string{"subscription:" + subID}).Return(nil).Once()

		require.NoError(t, newTestService(r, c).Remove(context.Background(), ownerID, subID))
		r.AssertExpectations(t)
		c.AssertExpectations(t)
	})

	t.Run("forbidden", func(t *testing.T) {
		r, c := new(RepoMock), new(CacheMock)
		c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
		r.On("GetSubscription", mock.Anything, subID).Return(storedSubscription(otherID), nil).Once()
		c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		err := newTestService(r, c).Remove(context.Background(), ownerID, subID)
		require.ErrorIs(t, err, models.ErrForbidden)
		r.AssertNotCalled(t, "DeleteSubscription", mock.Anything, mock.Anything)
	})
}

func TestService_List_OrderedByNextBillingDate(t *testing.T) {
	mk := func(id string, base time.Time, cycle string) models.Subscription {
		s, err := models.NewSubscription(id, ownerID, models.SubscriptionParams{
			ServiceName: id, Amount: 100, BillingCycle: cycle, BaseDate: base,
		}, fixedNow)
		require.NoError(t, err)
		return s
	}
	subs := []models.Subscription{
		mk("late", time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC), "monthly"),
		mk("early", time.Date(2023, 3, 11, 0, 0, 0, 0, time.UTC), "yearly"),
		mk("today", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "monthly"),
	}

	r, c := new(RepoMock), new(CacheMock)
	r.On("ListSubscriptionsByUser", mock.Anything, ownerID).Return(subs, nil).Once()

	got, err := newTestService(r, c).List(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "today", got[0].ID)
	assert.Equal(t, "2024-03-10", got[0].NextBillingDate)
	assert.Equal(t, "early", got[1].ID)
	assert.Equal(t, "2024-03-11", got[1].NextBillingDate)
	assert.Equal(t, "late", got[2].ID)
	assert.Equal(t, "2024-03-25", got[2].NextBillingDate)
}

func TestService_Summary(t *testing.T) {
	mk := func(id string, amount int, cycle string, pm *string) models.Subscription {
		s, err := models.NewSubscription(id, ownerID, models.SubscriptionParams{
			ServiceName: id, Amount: amount, BillingCycle: cycle, PaymentMethodID: pm,
			BaseDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		}, fixedNow)
		require.NoError(t, err)
		return s
	}
	subs := []models.Subscription{
		mk("a", 6, "yearly", nil),
		mk("b", 6, "yearly", nil),
		mk("c", 500, "monthly", strPtr(pmID)),
	}

	r, c := new(RepoMock), new(CacheMock)
	r.On("ListSubscriptionsByUser", mock.Anything, ownerID).Return(subs, nil).Once()
	r.On("ListPaymentMethodsByUser", mock.Anything, ownerID).
		Return([]models.PaymentMethod{{ID: pmID, UserID: ownerID, Name: "Visa"}}, nil).Once()

	got, err := newTestService(r, c).Summary(context.Background(), ownerID, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, 501, got.MonthlyTotal)
	assert.Equal(t, 6012, got.YearlyTotal)
	assert.Equal(t, "2024-03-15", got.NextBillingDate)
	require.Len(t, got.ByPaymentMethod, 2)
	assert.Equal(t, "Visa", got.ByPaymentMethod[0].Name)
	assert.Nil(t, got.ByPaymentMethod[1].PaymentMethodID)
}

func TestService_Summary_RepositoryError(t *testing.T) {
	r, c := new(RepoMock), new(CacheMock)
	r.On("ListSubscriptionsByUser", mock.Anything, ownerID).Return(nil, errors.New("db down")).Once()

	_, err := newTestService(r, c).Summary(context.Background(), ownerID, fixedNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscription.Summary")
}
