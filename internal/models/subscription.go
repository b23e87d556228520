package models

import (
	"fmt"
	"time"
)

// Subscription — регулярный платёж, который отслеживает пользователь.
// BaseDate — опорная дата, от которой отсчитываются списания.
type Subscription struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	ServiceName     string       `json:"service_name"`
	Amount          Amount       `json:"amount"`
	BillingCycle    BillingCycle `json:"billing_cycle"`
	BaseDate        time.Time    `json:"base_date"`
	PaymentMethodID *string      `json:"payment_method_id,omitempty"`
	Memo            string       `json:"memo"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// SubscriptionParams — изменяемые поля подписки, уже приведённые к нужным типам.
type SubscriptionParams struct {
	ServiceName     string
	Amount          int
	BillingCycle    string
	BaseDate        time.Time
	PaymentMethodID *string
	Memo            string
}

// NewSubscription создаёт подписку и проверяет все инварианты.
func NewSubscription(id, userID string, p SubscriptionParams, now time.Time) (Subscription, error) {
	s := Subscription{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
	}
	return s.apply(p, now)
}

// WithUpdate возвращает новую подписку с полями из p.
// ID, UserID и CreatedAt сохраняются.
func (s Subscription) WithUpdate(p SubscriptionParams, now time.Time) (Subscription, error) {
	return s.apply(p, now)
}

// HasPaymentMethod сообщает, привязан ли способ оплаты.
func (s Subscription) HasPaymentMethod() bool {
	return s.PaymentMethodID != nil && *s.PaymentMethodID != ""
}

func (s Subscription) apply(p SubscriptionParams, now time.Time) (Subscription, error) {
	name, err := validateName(p.ServiceName)
	if err != nil {
		return Subscription{}, fmt.Errorf("service_name: %w", err)
	}
	amount, err := NewAmount(p.Amount)
	if err != nil {
		return Subscription{}, fmt.Errorf("amount: %w", err)
	}
	cycle, err := ParseBillingCycle(p.BillingCycle)
	if err != nil {
		return Subscription{}, fmt.Errorf("billing_cycle: %w", err)
	}
	if p.BaseDate.IsZero() {
		return Subscription{}, fmt.Errorf("base_date: %w", ErrInvalidDate)
	}
	memo, err := validateMemo(p.Memo)
	if err != nil {
		return Subscription{}, fmt.Errorf("memo: %w", err)
	}

	var pmID *string
	if p.PaymentMethodID != nil && *p.PaymentMethodID != "" {
		v := *p.PaymentMethodID
		pmID = &v
	}

	s.ServiceName = name
	s.Amount = amount
	s.BillingCycle = cycle
	s.BaseDate = NewBaseDate(p.BaseDate)
	s.PaymentMethodID = pmID
	s.Memo = memo
	s.UpdatedAt = now
	return s, nil
}

// SubscriptionRequest используется для приёма данных подписки из JSON-запроса.
// Дата приходит строкой в формате 2006-01-02 и разбирается в Params.
type SubscriptionRequest struct {
	ServiceName     string  `json:"service_name" validate:"required,max=100"`
	Amount          *int    `json:"amount" validate:"required,min=0,max=1000000"`
	BillingCycle    string  `json:"billing_cycle" validate:"required,oneof=monthly yearly"`
	BaseDate        string  `json:"base_date" validate:"required"`
	PaymentMethodID *string `json:"payment_method_id,omitempty" validate:"omitempty,uuid"`
	Memo            string  `json:"memo" validate:"max=1000"`
}

// Params приводит запрос к SubscriptionParams, разбирая дату в часовом поясе loc.
func (r SubscriptionRequest) Params(loc *time.Location) (SubscriptionParams, error) {
	baseDate, err := ParseBaseDate(r.BaseDate, loc)
	if err != nil {
		return SubscriptionParams{}, fmt.Errorf("base_date: %w", err)
	}
	var amount int
	if r.Amount != nil {
		amount = *r.Amount
	}
	return SubscriptionParams{
		ServiceName:     r.ServiceName,
		Amount:          amount,
		BillingCycle:    r.BillingCycle,
		BaseDate:        baseDate,
		PaymentMethodID: r.PaymentMethodID,
		Memo:            r.Memo,
	}, nil
}

// SubscriptionView — подписка вместе с рассчитанными значениями для ответа API.
// BaseDate перекрывает поле встроенной подписки, чтобы в JSON дата
// выводилась без времени.
type SubscriptionView struct {
	Subscription
	BaseDate        string `json:"base_date"`
	NextBillingDate string `json:"next_billing_date"`
	MonthlyAmount   int    `json:"monthly_amount"`
	YearlyAmount    int    `json:"yearly_amount"`
}

// SubscriptionWithOwner — подписка с контактами владельца, используется планировщиком.
type SubscriptionWithOwner struct {
	Subscription
	Email    string
	UserName string
}
