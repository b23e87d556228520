// Package user содержит операции над учётной записью пользователя.
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
)

// AccountRepository удаляет данные пользователя. Методы вызываются внутри транзакции.
type AccountRepository interface {
	DeleteSubscriptionsByUser(ctx context.Context, userID string) ([]string, error)
	DeletePaymentMethodsByUser(ctx context.Context, userID string) ([]string, error)
	DeleteUser(ctx context.Context, id string) (int, error)
}

// Repository читает пользователей и открывает транзакции для удаления аккаунта.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	WithAccountTx(ctx context.Context, fn func(tx AccountRepository) error) error
}

// Cache удаляет закешированные подписки.
type Cache interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Service реализует операции над учётной записью.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Me возвращает профиль пользователя.
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	const op = "user.Me"

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u == nil {
		return nil, models.ErrNotFound
	}
	return u, nil
}

// CloseAccount удаляет подписки, способы оплаты и самого пользователя
// в одной транзакции, затем чистит кеш подписок.
func (s *Service) CloseAccount(ctx context.Context, userID string) error {
	const op = "user.CloseAccount"

	var removedSubs []string
	err := s.repo.WithAccountTx(ctx, func(tx AccountRepository) error {
		ids, err := tx.DeleteSubscriptionsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if _, err = tx.DeletePaymentMethodsByUser(ctx, userID); err != nil {
			return err
		}
		n, err := tx.DeleteUser(ctx, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			return models.ErrNotFound
		}
		removedSubs = ids
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(removedSubs) > 0 {
		keys := make([]string, 0, len(removedSubs))
		for _, id := range removedSubs {
			keys = append(keys, subscription.CacheKey(id))
		}
		if err = s.cache.Invalidate(ctx, keys...); err != nil {
			s.log.Warn("failed to remove from cache", slog.Int("keys", len(keys)), sl.Err(err))
		}
	}
	s.log.Info("account closed", slog.String("user_id", userID), slog.Int("subscriptions", len(removedSubs)))
	return nil
}
