// Package subscription содержит бизнес-логику управления подписками:
// проверку владельца, доменные правила, расчёт дат и сумм, кеширование.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Repository определяет методы хранилища, нужные сервису подписок.
type Repository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) error
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	DeleteSubscription(ctx context.Context, id string) (int, error)
	ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error)
	ListPaymentMethodsByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CacheKey возвращает ключ кеша для подписки.
func CacheKey(id string) string {
	return "subscription:" + id
}

// Service реализует операции над подписками пользователя.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
	loc   *time.Location
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

// NewService создает новый экземпляр Service. Даты списаний считаются в часовом поясе loc.
func NewService(repo Repository, cache Cache, loc *time.Location, ttl time.Duration, log *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
		loc:   loc,
		ttl:   ttl,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create создает подписку от имени пользователя userID.
func (s *Service) Create(ctx context.Context, userID string, req models.SubscriptionRequest) (*models.SubscriptionView, error) {
	const op = "subscription.Create"

	params, err := req.Params(s.loc)
	if err != nil {
		return nil, err
	}
	if err = s.checkPaymentMethod(ctx, userID, params.PaymentMethodID); err != nil {
		return nil, err
	}

	now := s.now()
	sub, err := models.NewSubscription(s.newID(), userID, params, now)
	if err != nil {
		return nil, err
	}
	if err = s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new subscription", slog.String("id", sub.ID), slog.String("user_id", userID))

	s.store(ctx, sub)
	view := s.view(sub, now)
	return &view, nil
}

// Read возвращает подписку, если она принадлежит пользователю.
func (s *Service) Read(ctx context.Context, userID, id string) (*models.SubscriptionView, error) {
	sub, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	view := s.view(*sub, s.now())
	return &view, nil
}

// Update перезаписывает поля подписки и обновляет кеш.
func (s *Service) Update(ctx context.Context, userID, id string, req models.SubscriptionRequest) (*models.SubscriptionView, error) {
	const op = "subscription.Update"

	current, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	params, err := req.Params(s.loc)
	if err != nil {
		return nil, err
	}
	if err = s.checkPaymentMethod(ctx, userID, params.PaymentMethodID); err != nil {
		return nil, err
	}

	now := s.now()
	updated, err := current.WithUpdate(params, now)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.UpdateSubscription(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		s.invalidate(ctx, id)
		return nil, models.ErrNotFound
	}

	s.store(ctx, updated)
	view := s.view(updated, now)
	return &view, nil
}

// Remove удаляет подписку и инвалидирует кеш.
func (s *Service) Remove(ctx context.Context, userID, id string) error {
	const op = "subscription.Remove"

	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	n, err := s.repo.DeleteSubscription(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	if n == 0 {
		return models.ErrNotFound
	}
	s.log.Info("removed subscription", slog.String("id", id))
	return nil
}

// List возвращает подписки пользователя, упорядоченные по дате ближайшего списания.
func (s *Service) List(ctx context.Context, userID string) ([]models.SubscriptionView, error) {
	const op = "subscription.List"

	subs, err := s.repo.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	views := make([]models.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, s.view(sub, now))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].NextBillingDate < views[j].NextBillingDate
	})
	return views, nil
}

// Summary считает месячные и годовые расходы пользователя на момент now.
func (s *Service) Summary(ctx context.Context, userID string, now time.Time) (models.Summary, error) {
	const op = "subscription.Summary"

	subs, err := s.repo.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return models.Summary{}, fmt.Errorf("%s: %w", op, err)
	}
	methods, err := s.repo.ListPaymentMethodsByUser(ctx, userID)
	if err != nil {
		return models.Summary{}, fmt.Errorf("%s: %w", op, err)
	}

	names := make(map[string]string, len(methods))
	for _, pm := range methods {
		names[pm.ID] = pm.Name
	}
	summary := billing.Summarize(subs, names)
	for _, sub := range subs {
		next := billing.NextBillingDate(sub.BaseDate, sub.BillingCycle, now.In(s.loc)).Format(models.DateLayout)
		if summary.NextBillingDate == "" || next < summary.NextBillingDate {
			summary.NextBillingDate = next
		}
	}
	return summary, nil
}

// owned читает подписку из кеша или хранилища и проверяет владельца.
func (s *Service) owned(ctx context.Context, userID, id string) (*models.Subscription, error) {
	const op = "subscription.owned"

	var sub *models.Subscription
	found, err := s.cache.Get(ctx, CacheKey(id), &sub)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", CacheKey(id)), sl.Err(err))
		found = false
	}
	if !found || sub == nil {
		sub, err = s.repo.GetSubscription(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if sub == nil {
			return nil, models.ErrNotFound
		}
		s.store(ctx, *sub)
	}
	if sub.UserID != userID {
		return nil, models.ErrForbidden
	}
	return sub, nil
}

// checkPaymentMethod проверяет, что способ оплаты существует и принадлежит пользователю.
func (s *Service) checkPaymentMethod(ctx context.Context, userID string, pmID *string) error {
	const op = "subscription.checkPaymentMethod"
	if pmID == nil || *pmID == "" {
		return nil
	}
	pm, err := s.repo.GetPaymentMethod(ctx, *pmID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if pm == nil {
		return fmt.Errorf("payment method: %w", models.ErrNotFound)
	}
	if pm.UserID != userID {
		return fmt.Errorf("payment method: %w", models.ErrForbidden)
	}
	return nil
}

func (s *Service) view(sub models.Subscription, now time.Time) models.SubscriptionView {
	next := billing.NextBillingDate(sub.BaseDate, sub.BillingCycle, now.In(s.loc))
	return models.SubscriptionView{
		Subscription:    sub,
		BaseDate:        sub.BaseDate.Format(models.DateLayout),
		NextBillingDate: next.Format(models.DateLayout),
		MonthlyAmount:   billing.MonthlyAmount(sub),
		YearlyAmount:    billing.YearlyAmount(sub),
	}
}

func (s *Service) store(ctx context.Context, sub models.Subscription) {
	key := CacheKey(sub.ID)
	if err := s.cache.Set(ctx, key, sub, s.ttl); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", key), sl.Err(err))
	}
}

func (s *Service) invalidate(ctx context.Context, id string) {
	key := CacheKey(id)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
	}
}
