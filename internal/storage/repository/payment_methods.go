package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const paymentMethodColumns = `id, user_id, name, created_at, updated_at`

// CreatePaymentMethod вставляет новый способ оплаты.
func (s *Storage) CreatePaymentMethod(ctx context.Context, pm models.PaymentMethod) error {
	const op = "storage.CreatePaymentMethod"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO payment_methods (id, user_id, name, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err := s.q.ExecContext(ctx, query, pm.ID, pm.UserID, pm.Name, pm.CreatedAt, pm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPaymentMethod возвращает способ оплаты по ID или nil, если его нет.
func (s *Storage) GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error) {
	const op = "storage.GetPaymentMethod"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = $1`, id)
	res, err := scanPaymentMethod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdatePaymentMethod обновляет название способа оплаты.
func (s *Storage) UpdatePaymentMethod(ctx context.Context, pm models.PaymentMethod) (int, error) {
	const op = "storage.UpdatePaymentMethod"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.q.ExecContext(ctx,
		`UPDATE payment_methods SET name = $2, updated_at = $3 WHERE id = $1`, pm.ID, pm.Name, pm.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeletePaymentMethod удаляет способ оплаты. Если на него ссылаются подписки,
// возвращает models.ErrPaymentMethodInUse.
func (s *Storage) DeletePaymentMethod(ctx context.Context, id string) (int, error) {
	const op = "storage.DeletePaymentMethod"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return 0, fmt.Errorf("%s: %w", op, models.ErrPaymentMethodInUse)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListPaymentMethodsByUser возвращает способы оплаты пользователя по имени.
func (s *Storage) ListPaymentMethodsByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	const op = "storage.ListPaymentMethodsByUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE user_id = $1 ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	res := make([]models.PaymentMethod, 0)
	for rows.Next() {
		pm, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, *pm)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// DeletePaymentMethodsByUser удаляет все способы оплаты пользователя и возвращает их ID.
func (s *Storage) DeletePaymentMethodsByUser(ctx context.Context, userID string) ([]string, error) {
	const op = "storage.DeletePaymentMethodsByUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `DELETE FROM payment_methods WHERE user_id = $1 RETURNING id`, userID)
	if err == nil {
		var ids []string
		if ids, err = collectIDs(rows); err == nil {
			return ids, nil
		}
	}
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrPaymentMethodInUse)
	}
	return nil, fmt.Errorf("%s: %w", op, err)
}

func scanPaymentMethod(row scanner) (*models.PaymentMethod, error) {
	var pm models.PaymentMethod
	if err := row.Scan(&pm.ID, &pm.UserID, &pm.Name, &pm.CreatedAt, &pm.UpdatedAt); err != nil {
		return nil, err
	}
	return &pm, nil
}
