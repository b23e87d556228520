package user

import (
	"context"

	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

type storageRepository struct {
	*repository.Storage
}

// NewStorageRepository адаптирует repository.Storage к Repository.
func NewStorageRepository(s *repository.Storage) Repository {
	return storageRepository{Storage: s}
}

func (r storageRepository) WithAccountTx(ctx context.Context, fn func(tx AccountRepository) error) error {
	return r.WithTx(ctx, func(tx *repository.Storage) error {
		return fn(tx)
	})
}
