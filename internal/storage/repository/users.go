package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const userColumns = `id, email, name, provider, provider_account_id, thumbnail, created_at, updated_at`

// UpsertOAuthUser создаёт пользователя или обновляет профиль существующего,
// найденного по паре (provider, provider_account_id). ID и CreatedAt
// существующей записи сохраняются.
func (s *Storage) UpsertOAuthUser(ctx context.Context, u models.User) (*models.User, error) {
	const op = "storage.UpsertOAuthUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO users (id, email, name, provider, provider_account_id, thumbnail, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (provider, provider_account_id) DO UPDATE
			  SET email = EXCLUDED.email,
			      name = EXCLUDED.name,
			      thumbnail = EXCLUDED.thumbnail,
			      updated_at = EXCLUDED.updated_at
			  RETURNING ` + userColumns
	row := s.q.QueryRowContext(ctx, query,
		u.ID, u.Email, u.Name, u.Provider, u.ProviderAccountID, nullString(u.Thumbnail), u.CreatedAt, u.UpdatedAt)
	res, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetUser возвращает пользователя по ID или nil, если его нет.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	res, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// DeleteUser удаляет пользователя и возвращает количество удалённых строк.
// Подписки и способы оплаты должны быть удалены заранее.
func (s *Storage) DeleteUser(ctx context.Context, id string) (int, error) {
	const op = "storage.DeleteUser"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u         models.User
		thumbnail sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Provider, &u.ProviderAccountID, &thumbnail, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Thumbnail = stringPtr(thumbnail)
	return &u, nil
}
