// Package scheduler периодически ищет подписки со списанием на следующий день
// и публикует напоминания в RabbitMQ.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Repository постранично отдаёт подписки вместе с владельцами.
type Repository interface {
	ListSubscriptionsWithOwners(ctx context.Context, limit, offset int) ([]models.SubscriptionWithOwner, error)
}

// Publisher публикует сообщение с заданным ключом маршрутизации.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Counter счётчик опубликованных напоминаний.
type Counter interface {
	Inc()
}

// Service ищет завтрашние списания и публикует напоминания.
type Service struct {
	repo      Repository
	publisher Publisher
	published Counter
	log       *slog.Logger
	loc       *time.Location
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, publisher Publisher, published Counter, loc *time.Location,
	interval time.Duration, batchSize int, log *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		published: published,
		log:       log,
		loc:       loc,
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Run выполняет проверку сразу и затем каждые interval до отмены ctx.
func (s *Service) Run(ctx context.Context) {
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	n, err := s.RemindUpcoming(ctx)
	if err != nil {
		s.log.Error("failed to publish billing reminders", sl.Err(err))
		return
	}
	s.log.Info("billing reminders published", slog.Int("count", n))
}

// RemindUpcoming публикует напоминания для подписок, списание по которым
// приходится на следующий день. Возвращает число опубликованных сообщений.
// Ошибка публикации отдельного сообщения логируется и не прерывает обход.
func (s *Service) RemindUpcoming(ctx context.Context) (int, error) {
	const op = "scheduler.RemindUpcoming"

	now := s.now().In(s.loc)
	tomorrow := models.NewBaseDate(now).AddDate(0, 0, 1).Format(models.DateLayout)

	published := 0
	for offset := 0; ; offset += s.batchSize {
		batch, err := s.repo.ListSubscriptionsWithOwners(ctx, s.batchSize, offset)
		if err != nil {
			return published, fmt.Errorf("%s: %w", op, err)
		}

		for _, item := range batch {
			next := billing.NextBillingDate(item.BaseDate, item.BillingCycle, now).Format(models.DateLayout)
			if next != tomorrow {
				continue
			}
			reminder := models.BillingReminder{
				SubscriptionID: item.ID,
				UserID:         item.UserID,
				Email:          item.Email,
				UserName:       item.UserName,
				ServiceName:    item.ServiceName,
				Amount:         item.Amount.Int(),
				BillingCycle:   item.BillingCycle.String(),
				BillingDate:    next,
			}
			if err = s.publisher.Publish(ctx, rabbitmq.RoutingKeyBillingUpcoming, reminder); err != nil {
				s.log.Error("failed to publish message", slog.String("subscription_id", item.ID), sl.Err(err))
				continue
			}
			published++
			s.published.Inc()
		}

		if len(batch) < s.batchSize {
			return published, nil
		}
	}
}
