// Package auth содержит логику входа через OAuth провайдера, выпуска
// и отзыва JWT сессий.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// ErrTokenRevoked — токен отозван при выходе пользователя.
var ErrTokenRevoked = errors.New("token revoked")

// Provider описывает OAuth провайдера.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.OAuthProfile, error)
}

// UserRepository сохраняет пользователей, вошедших через провайдера.
type UserRepository interface {
	UpsertOAuthUser(ctx context.Context, u models.User) (*models.User, error)
}

// RevocationStore хранит отозванные идентификаторы токенов.
type RevocationStore interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Service отвечает за вход, проверку и отзыв JWT.
type Service struct {
	provider Provider
	users    UserRepository
	jwtMaker jwt.Maker
	revoked  RevocationStore
	log      *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService создает новый экземпляр Service.
func NewService(provider Provider, users UserRepository, jwtMaker jwt.Maker, revoked RevocationStore, log *slog.Logger) *Service {
	return &Service{
		provider: provider,
		users:    users,
		jwtMaker: jwtMaker,
		revoked:  revoked,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}

// LoginURL возвращает ссылку на страницу согласия провайдера.
func (s *Service) LoginURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

// Callback обменивает код авторизации на профиль, создаёт или обновляет
// пользователя и выпускает JWT.
func (s *Service) Callback(ctx context.Context, code string) (string, *models.User, error) {
	const op = "auth.Callback"

	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	candidate, err := models.NewUser(s.newID(), *profile, s.now())
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.UpsertOAuthUser(ctx, candidate)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	token, _, err := s.jwtMaker.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user logged in", slog.String("user_id", user.ID), slog.String("provider", s.provider.Name()))
	return token, user, nil
}

// ValidateToken проверяет подпись и срок действия токена и то, что он не отозван.
func (s *Service) ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "auth.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.ID == "" {
		return claims, nil
	}
	revoked, err := s.revoked.Exists(ctx, revokedKey(claims.ID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout отзывает токен до окончания срока его действия.
func (s *Service) Logout(ctx context.Context, claims *jwt.CustomClaims) error {
	const op = "auth.Logout"
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Set(ctx, revokedKey(claims.ID), 1, ttl); err != nil {
		s.log.Error("failed to revoke token", slog.String("jti", claims.ID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user logged out", slog.String("user_id", claims.UserID()))
	return nil
}
