package billing

import (
	"sort"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// MonthlyAmount возвращает месячный эквивалент суммы подписки.
// Для годовой подписки — сумма / 12 с округлением вниз.
func MonthlyAmount(s models.Subscription) int {
	if s.BillingCycle == models.BillingCycleYearly {
		return s.Amount.Int() / 12
	}
	return s.Amount.Int()
}

// YearlyAmount возвращает годовой эквивалент суммы подписки.
func YearlyAmount(s models.Subscription) int {
	if s.BillingCycle == models.BillingCycleYearly {
		return s.Amount.Int()
	}
	return s.Amount.Int() * 12
}

// MonthlyTotal суммирует месячные эквиваленты. Округление выполняется
// один раз для всей суммы, а не для каждой подписки.
func MonthlyTotal(subs []models.Subscription) int {
	var monthly, yearly int
	for _, s := range subs {
		if s.BillingCycle == models.BillingCycleYearly {
			yearly += s.Amount.Int()
		} else {
			monthly += s.Amount.Int()
		}
	}
	return monthly + yearly/12
}

// YearlyTotal суммирует годовые эквиваленты.
func YearlyTotal(subs []models.Subscription) int {
	total := 0
	for _, s := range subs {
		total += YearlyAmount(s)
	}
	return total
}

// UnassignedName — название группы подписок без способа оплаты.
const UnassignedName = "unassigned"

// Summarize считает общие суммы и разбивку по способам оплаты.
// names сопоставляет ID способа оплаты с его названием.
// Группы упорядочены по названию, группа без способа оплаты идёт последней.
func Summarize(subs []models.Subscription, names map[string]string) models.Summary {
	groups := make(map[string][]models.Subscription)
	for _, s := range subs {
		key := ""
		if s.HasPaymentMethod() {
			key = *s.PaymentMethodID
		}
		groups[key] = append(groups[key], s)
	}

	breakdown := make([]models.PaymentMethodTotal, 0, len(groups))
	for key, group := range groups {
		item := models.PaymentMethodTotal{
			Name:         UnassignedName,
			Count:        len(group),
			MonthlyTotal: MonthlyTotal(group),
			YearlyTotal:  YearlyTotal(group),
		}
		if key != "" {
			id := key
			item.PaymentMethodID = &id
			item.Name = names[key]
		}
		breakdown = append(breakdown, item)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		a, b := breakdown[i], breakdown[j]
		if (a.PaymentMethodID == nil) != (b.PaymentMethodID == nil) {
			return b.PaymentMethodID == nil
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.PaymentMethodID == nil {
			return false
		}
		return *a.PaymentMethodID < *b.PaymentMethodID
	})

	return models.Summary{
		Count:           len(subs),
		MonthlyTotal:    MonthlyTotal(subs),
		YearlyTotal:     YearlyTotal(subs),
		ByPaymentMethod: breakdown,
	}
}
