// Package jwt реализует выпуск и разбор JWT токенов сессии пользователя.
//
// Maker определяет интерфейс, MakerImpl — реализацию на HS256
// с секретным ключом и временем жизни токена.
package jwt

import (
	"time"

	"github.com/google/uuid"
)

// Maker описывает интерфейс для выпуска и разбора JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для пользователя с указанными ID и email.
	GenerateToken(userID, email string) (string, *CustomClaims, error)
	// ParseToken проверяет подпись и срок действия, возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с использованием секретного ключа и TTL.
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	issuer    string
	newID     func() string
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		issuer:    "subscription-tracker",
		newID:     uuid.NewString,
		now:       time.Now,
	}
}
