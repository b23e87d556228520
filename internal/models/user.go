package models

import (
	"fmt"
	"strings"
	"time"
)

// User — пользователь, вошедший через OAuth-провайдера.
type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"-"`
	Thumbnail         *string   `json:"thumbnail,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// OAuthProfile — данные пользователя, полученные от провайдера.
type OAuthProfile struct {
	Provider          string
	ProviderAccountID string
	Email             string
	Name              string
	Thumbnail         string
}

// NewUser создаёт пользователя из профиля провайдера.
// Если провайдер не вернул имя, используется локальная часть email.
func NewUser(id string, p OAuthProfile, now time.Time) (User, error) {
	email := strings.TrimSpace(p.Email)
	if email == "" {
		return User{}, ErrInvalidEmail
	}
	name := p.Name
	if strings.TrimSpace(name) == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	n, err := validateName(name)
	if err != nil {
		return User{}, fmt.Errorf("name: %w", err)
	}
	return User{
		ID:                id,
		Email:             email,
		Name:              n,
		Provider:          p.Provider,
		ProviderAccountID: p.ProviderAccountID,
		Thumbnail:         optional(p.Thumbnail),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// WithUpdate возвращает копию пользователя с новым именем и аватаром.
func (u User) WithUpdate(name, thumbnail string, now time.Time) (User, error) {
	n, err := validateName(name)
	if err != nil {
		return User{}, fmt.Errorf("name: %w", err)
	}
	u.Name = n
	u.Thumbnail = optional(thumbnail)
	u.UpdatedAt = now
	return u, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
