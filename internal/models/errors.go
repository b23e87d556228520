package models

import "errors"

var (
	// ErrInvalidName имя пустое или длиннее MaxNameLength символов.
	ErrInvalidName = errors.New("name must be non-empty and at most 100 characters")
	// ErrInvalidAmount сумма вне диапазона [MinAmount, MaxAmount].
	ErrInvalidAmount = errors.New("amount must be an integer between 0 and 1000000")
	// ErrInvalidBillingCycle неизвестный период списания.
	ErrInvalidBillingCycle = errors.New("billing cycle must be monthly or yearly")
	// ErrInvalidMemo слишком длинная заметка.
	ErrInvalidMemo = errors.New("memo must be at most 1000 characters")
	// ErrInvalidEmail пустой email.
	ErrInvalidEmail = errors.New("email must be non-empty")
	// ErrInvalidDate дата не указана или имеет неверный формат.
	ErrInvalidDate = errors.New("date must be in format 2006-01-02")

	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrForbidden запись принадлежит другому пользователю.
	ErrForbidden = errors.New("forbidden")
	// ErrPaymentMethodInUse способ оплаты привязан хотя бы к одной подписке.
	ErrPaymentMethodInUse = errors.New("payment method is used by subscriptions")
)

// IsValidation сообщает, вызвана ли ошибка нарушением инвариантов модели.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidName, ErrInvalidAmount, ErrInvalidBillingCycle,
		ErrInvalidMemo, ErrInvalidEmail, ErrInvalidDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
