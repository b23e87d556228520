package models

import (
	"fmt"
	"time"
)

// PaymentMethod — именованный источник оплаты, на который может ссылаться подписка.
type PaymentMethod struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPaymentMethod создаёт способ оплаты с проверкой имени.
func NewPaymentMethod(id, userID, name string, now time.Time) (PaymentMethod, error) {
	n, err := validateName(name)
	if err != nil {
		return PaymentMethod{}, fmt.Errorf("name: %w", err)
	}
	return PaymentMethod{
		ID:        id,
		UserID:    userID,
		Name:      n,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// WithUpdate возвращает копию с новым именем.
func (p PaymentMethod) WithUpdate(name string, now time.Time) (PaymentMethod, error) {
	n, err := validateName(name)
	if err != nil {
		return PaymentMethod{}, fmt.Errorf("name: %w", err)
	}
	p.Name = n
	p.UpdatedAt = now
	return p, nil
}

// PaymentMethodRequest используется для приёма данных способа оплаты из JSON-запроса.
type PaymentMethodRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
