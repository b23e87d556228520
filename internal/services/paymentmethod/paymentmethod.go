// Package paymentmethod содержит бизнес-логику способов оплаты пользователя.
package paymentmethod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Repository определяет методы хранилища для способов оплаты.
type Repository interface {
	CreatePaymentMethod(ctx context.Context, pm models.PaymentMethod) error
	GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, pm models.PaymentMethod) (int, error)
	DeletePaymentMethod(ctx context.Context, id string) (int, error)
	ListPaymentMethodsByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	CountSubscriptionsByPaymentMethod(ctx context.Context, paymentMethodID string) (int, error)
}

// Service реализует операции над способами оплаты.
type Service struct {
	repo  Repository
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create добавляет способ оплаты пользователю.
func (s *Service) Create(ctx context.Context, userID string, req models.PaymentMethodRequest) (*models.PaymentMethod, error) {
	const op = "paymentmethod.Create"

	pm, err := models.NewPaymentMethod(s.newID(), userID, req.Name, s.now())
	if err != nil {
		return nil, err
	}
	if err = s.repo.CreatePaymentMethod(ctx, pm); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created payment method", slog.String("id", pm.ID), slog.String("user_id", userID))
	return &pm, nil
}

// Read возвращает способ оплаты, если он принадлежит пользователю.
func (s *Service) Read(ctx context.Context, userID, id string) (*models.PaymentMethod, error) {
	return s.owned(ctx, userID, id)
}

// Update переименовывает способ оплаты.
func (s *Service) Update(ctx context.Context, userID, id string, req models.PaymentMethodRequest) (*models.PaymentMethod, error) {
	const op = "paymentmethod.Update"

	current, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	updated, err := current.WithUpdate(req.Name, s.now())
	if err != nil {
		return nil, err
	}
	n, err := s.repo.UpdatePaymentMethod(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return nil, models.ErrNotFound
	}
	return &updated, nil
}

// Remove удаляет способ оплаты. Пока на него ссылается хотя бы одна подписка,
// возвращается models.ErrPaymentMethodInUse.
func (s *Service) Remove(ctx context.Context, userID, id string) error {
	const op = "paymentmethod.Remove"

	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	count, err := s.repo.CountSubscriptionsByPaymentMethod(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count > 0 {
		return models.ErrPaymentMethodInUse
	}

	n, err := s.repo.DeletePaymentMethod(ctx, id)
	if errors.Is(err, models.ErrPaymentMethodInUse) {
		return models.ErrPaymentMethodInUse
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	s.log.Info("removed payment method", slog.String("id", id))
	return nil
}

// List возвращает способы оплаты пользователя.
func (s *Service) List(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	const op = "paymentmethod.List"

	res, err := s.repo.ListPaymentMethodsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (s *Service) owned(ctx context.Context, userID, id string) (*models.PaymentMethod, error) {
	const op = "paymentmethod.owned"

	pm, err := s.repo.GetPaymentMethod(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pm == nil {
		return nil, models.ErrNotFound
	}
	if pm.UserID != userID {
		return nil, models.ErrForbidden
	}
	return pm, nil
}
