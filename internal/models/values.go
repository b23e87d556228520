// Package models содержит доменные сущности трекера подписок (пользователь,
// подписка, способ оплаты), объекты-значения (сумма, период списания, дата)
// и структуры для приёма данных из JSON-запросов.
//
// Сущности неизменяемы: конструкторы New* проверяют инварианты,
// а WithUpdate возвращает новый экземпляр с обновлёнными полями.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxNameLength максимальная длина названий в символах.
	MaxNameLength = 100
	// MaxMemoLength максимальная длина заметки в символах.
	MaxMemoLength = 1000
	// MinAmount и MaxAmount — допустимый диапазон суммы подписки.
	MinAmount = 0
	MaxAmount = 1_000_000

	// DateLayout формат даты в запросах и ответах.
	DateLayout = "2006-01-02"
)

// Amount сумма списания в целых единицах валюты.
type Amount int

// NewAmount проверяет диапазон и возвращает Amount.
func NewAmount(v int) (Amount, error) {
	if v < MinAmount || v > MaxAmount {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidAmount, v)
	}
	return Amount(v), nil
}

// Int возвращает сумму как int.
func (a Amount) Int() int {
	return int(a)
}

// BillingCycle период списания подписки.
type BillingCycle string

const (
	// BillingCycleMonthly ежемесячное списание.
	BillingCycleMonthly BillingCycle = "monthly"
	// BillingCycleYearly ежегодное списание.
	BillingCycleYearly BillingCycle = "yearly"
)

// ParseBillingCycle разбирает строковое значение периода.
func ParseBillingCycle(s string) (BillingCycle, error) {
	switch c := BillingCycle(s); c {
	case BillingCycleMonthly, BillingCycleYearly:
		return c, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidBillingCycle, s)
	}
}

// Months возвращает длину одного периода в месяцах.
func (c BillingCycle) Months() int {
	if c == BillingCycleYearly {
		return 12
	}
	return 1
}

// String реализует fmt.Stringer.
func (c BillingCycle) String() string {
	return string(c)
}

// NewBaseDate усекает время до полуночи в часовом поясе t.
func NewBaseDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseBaseDate разбирает дату в формате DateLayout в часовом поясе loc.
func ParseBaseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func validateMemo(memo string) (string, error) {
	if utf8.RuneCountInString(memo) > MaxMemoLength {
		return "", ErrInvalidMemo
	}
	return memo, nil
}
