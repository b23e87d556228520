package models

// Summary агрегированные расходы пользователя.
type Summary struct {
	Count           int                  `json:"count"`
	MonthlyTotal    int                  `json:"monthly_total"`
	YearlyTotal     int                  `json:"yearly_total"`
	ByPaymentMethod []PaymentMethodTotal `json:"by_payment_method"`
	// NextBillingDate ближайшая дата списания среди всех подписок.
	NextBillingDate string `json:"next_billing_date,omitempty"`
}

// PaymentMethodTotal расходы по одному способу оплаты.
// PaymentMethodID равен nil для подписок без способа оплаты.
type PaymentMethodTotal struct {
	PaymentMethodID *string `json:"payment_method_id"`
	Name            string  `json:"name"`
	Count           int     `json:"count"`
	MonthlyTotal    int     `json:"monthly_total"`
	YearlyTotal     int     `json:"yearly_total"`
}

// BillingReminder сообщение о завтрашнем списании, публикуется в очередь.
type BillingReminder struct {
	SubscriptionID string `json:"subscription_id"`
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	UserName       string `json:"user_name"`
	ServiceName    string `json:"service_name"`
	Amount         int    `json:"amount"`
	BillingCycle   string `json:"billing_cycle"`
	BillingDate    string `json:"billing_date"`
}
