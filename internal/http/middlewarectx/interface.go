package middlewarectx

import (
	"context"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
)

// TokenValidator проверяет JWT и возвращает его claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error)
}

// HTTPObserver учитывает обработанные HTTP-запросы.
type HTTPObserver interface {
	ObserveHTTP(route, method string, status int, d time.Duration)
}
