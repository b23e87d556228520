package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims описывает данные сессии, хранящиеся в JWT.
// Subject — ID пользователя, ID — уникальный идентификатор токена (jti).
type CustomClaims struct {
	Email                string `json:"email"`
	jwt.RegisteredClaims        // Стандартные claims (sub, jti, exp, iat, iss)
}

// UserID возвращает ID пользователя из claim sub.
func (c *CustomClaims) UserID() string {
	return c.Subject
}

// GenerateToken выпускает токен и возвращает его вместе с claims.
func (j *MakerImpl) GenerateToken(userID, email string) (string, *CustomClaims, error) {
	const op = "jwt.GenerateToken"
	if userID == "" {
		return "", nil, fmt.Errorf("%s: empty user id", op)
	}

	now := j.now()
	claims := &CustomClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        j.newID(),
			Subject:   userID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return signed, claims, nil
}

// ParseToken разбирает токен, проверяет алгоритм, подпись и срок действия.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("missing subject"))
	}
	return claims, nil
}
