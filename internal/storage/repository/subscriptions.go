package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const subscriptionColumns = `s.id, s.user_id, s.service_name, s.amount, s.billing_cycle, s.base_date,
	s.payment_method_id, s.memo, s.created_at, s.updated_at`

// CreateSubscription вставляет новую подписку.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.CreateSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO subscriptions (id, user_id, service_name, amount, billing_cycle, base_date,
			      payment_method_id, memo, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10)`
	_, err := s.q.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.ServiceName, sub.Amount.Int(), sub.BillingCycle.String(),
		sub.BaseDate.Format(models.DateLayout), nullString(sub.PaymentMethodID), sub.Memo,
		sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSubscription возвращает подписку по ID или nil, если её нет.
func (s *Storage) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions s WHERE s.id = $1`, id)
	res, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdateSubscription перезаписывает изменяемые поля подписки и возвращает
// количество обновлённых строк.
func (s *Storage) UpdateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.UpdateSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	query := `UPDATE subscriptions
			  SET service_name = $2, amount = $3, billing_cycle = $4, base_date = $5::date,
			      payment_method_id = $6, memo = $7, updated_at = $8
			  WHERE id = $1`
	result, err := s.q.ExecContext(ctx, query,
		sub.ID, sub.ServiceName, sub.Amount.Int(), sub.BillingCycle.String(),
		sub.BaseDate.Format(models.DateLayout), nullString(sub.PaymentMethodID), sub.Memo, sub.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteSubscription удаляет подписку по ID и возвращает количество удалённых строк.
func (s *Storage) DeleteSubscription(ctx context.Context, id string) (int, error) {
	const op = "storage.DeleteSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListSubscriptionsByUser возвращает все подписки пользователя в порядке создания.
func (s *Storage) ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptionsByUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions s
			  WHERE s.user_id = $1
			  ORDER BY s.created_at, s.id`
	rows, err := s.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	subs := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subs = append(subs, *sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// CountSubscriptionsByPaymentMethod считает подписки, привязанные к способу оплаты.
func (s *Storage) CountSubscriptionsByPaymentMethod(ctx context.Context, paymentMethodID string) (int, error) {
	const op = "storage.CountSubscriptionsByPaymentMethod"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE payment_method_id = $1`, paymentMethodID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// DeleteSubscriptionsByUser удаляет все подписки пользователя и возвращает их ID.
func (s *Storage) DeleteSubscriptionsByUser(ctx context.Context, userID string) ([]string, error) {
	const op = "storage.DeleteSubscriptionsByUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `DELETE FROM subscriptions WHERE user_id = $1 RETURNING id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// ListSubscriptionsWithOwners постранично возвращает подписки всех
// пользователей вместе с e-mail и именем владельца.
func (s *Storage) ListSubscriptionsWithOwners(ctx context.Context, limit, offset int) ([]models.SubscriptionWithOwner, error) {
	const op = "storage.ListSubscriptionsWithOwners"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + `, u.email, u.name
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  ORDER BY s.id
			  LIMIT $1 OFFSET $2`
	rows, err := s.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	res := make([]models.SubscriptionWithOwner, 0)
	for rows.Next() {
		var (
			item   models.SubscriptionWithOwner
			amount int
			cycle  string
			pmID   sql.NullString
		)
		err = rows.Scan(&item.ID, &item.UserID, &item.ServiceName, &amount, &cycle, &item.BaseDate,
			&pmID, &item.Memo, &item.CreatedAt, &item.UpdatedAt, &item.Email, &item.UserName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Amount = models.Amount(amount)
		item.BillingCycle = models.BillingCycle(cycle)
		item.PaymentMethodID = stringPtr(pmID)
		res = append(res, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func scanSubscription(row scanner) (*models.Subscription, error) {
	var (
		sub    models.Subscription
		amount int
		cycle  string
		pmID   sql.NullString
	)
	err := row.Scan(&sub.ID, &sub.UserID, &sub.ServiceName, &amount, &cycle, &sub.BaseDate,
		&pmID, &sub.Memo, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sub.Amount = models.Amount(amount)
	sub.BillingCycle = models.BillingCycle(cycle)
	sub.PaymentMethodID = stringPtr(pmID)
	return &sub, nil
}

func collectIDs(rows *sql.Rows) ([]string, error) {
	defer func() { _ = rows.Close() }()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
