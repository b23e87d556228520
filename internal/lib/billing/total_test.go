package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

func sub(amount int, cycle models.BillingCycle, pm string) models.Subscription {
	s := models.Subscription{Amount: models.Amount(amount), BillingCycle: cycle}
	if pm != "" {
		s.PaymentMethodID = &pm
	}
	return s
}

func TestMonthlyAndYearlyAmount(t *testing.T) {
	assert.Equal(t, 1000, MonthlyAmount(sub(1000, models.BillingCycleMonthly, "")))
	assert.Equal(t, 12000, YearlyAmount(sub(1000, models.BillingCycleMonthly, "")))
	assert.Equal(t, 833, MonthlyAmount(sub(9999, models.BillingCycleYearly, "")))
	assert.Equal(t, 9999, YearlyAmount(sub(9999, models.BillingCycleYearly, "")))
}

func TestMonthlyTotal_FloorsOnce(t *testing.T) {
	subs := []models.Subscription{
		sub(6, models.BillingCycleYearly, ""),
		sub(6, models.BillingCycleYearly, ""),
	}
	// 0.5 + 0.5 = 1, а не 0 + 0
	assert.Equal(t, 1, MonthlyTotal(subs))
	assert.Equal(t, 12, YearlyTotal(subs))

	subs = append(subs, sub(500, models.BillingCycleMonthly, ""))
	assert.Equal(t, 501, MonthlyTotal(subs))
	assert.Equal(t, 6012, YearlyTotal(subs))

	assert.Equal(t, 0, MonthlyTotal(nil))
	assert.Equal(t, 0, YearlyTotal(nil))
}

func TestSummarize(t *testing.T) {
	subs := []models.Subscription{
		sub(1000, models.BillingCycleMonthly, "pm-visa"),
		sub(12000, models.BillingCycleYearly, "pm-visa"),
		sub(300, models.BillingCycleMonthly, "pm-amex"),
		sub(50, models.BillingCycleMonthly, ""),
	}
	names := map[string]string{"pm-visa": "Visa", "pm-amex": "Amex"}

	got := Summarize(subs, names)
	assert.Equal(t, 4, got.Count)
	assert.Equal(t, 2350, got.MonthlyTotal)
	assert.Equal(t, 28200, got.YearlyTotal)

	require.Len(t, got.ByPaymentMethod, 3)
	assert.Equal(t, "Amex", got.ByPaymentMethod[0].Name)
	assert.Equal(t, 300, got.ByPaymentMethod[0].MonthlyTotal)

	assert.Equal(t, "Visa", got.ByPaymentMethod[1].Name)
	assert.Equal(t, 2, got.ByPaymentMethod[1].Count)
	assert.Equal(t, 2000, got.ByPaymentMethod[1].MonthlyTotal)
	assert.Equal(t, 24000, got.ByPaymentMethod[1].YearlyTotal)

	assert.Nil(t, got.ByPaymentMethod[2].PaymentMethodID)
	assert.Equal(t, UnassignedName, got.ByPaymentMethod[2].Name)
	assert.Equal(t, 600, got.ByPaymentMethod[2].YearlyTotal)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil, nil)
	assert.Equal(t, 0, got.Count)
	assert.NotNil(t, got.ByPaymentMethod)
	assert.Empty(t, got.ByPaymentMethod)
}
