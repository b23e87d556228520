// Package billing содержит расчёты по подпискам: дату следующего списания
// и приведение сумм к месячному и годовому эквиваленту.
package billing

import (
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// NextBillingDate возвращает первую дату списания, не раньше полуночи дня now.
//
// От base откладывается целое число периодов cycle. Если в целевом месяце
// нет нужного дня (31 января + 1 месяц), берётся последний день месяца.
// Отсчёт всегда идёт от base, поэтому дата не "съезжает" после коротких месяцев.
// Часовой пояс результата совпадает с часовым поясом now.
func NextBillingDate(base time.Time, cycle models.BillingCycle, now time.Time) time.Time {
	loc := now.Location()
	start := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, loc)
	today := models.NewBaseDate(now)

	if !start.Before(today) {
		return start
	}

	step := cycle.Months()
	monthsDiff := (today.Year()-start.Year())*12 + int(today.Month()) - int(start.Month())
	k := monthsDiff/step - 1
	if k < 1 {
		k = 1
	}

	for {
		next := AddMonthsClamped(start, k*step)
		if !next.Before(today) {
			return next
		}
		k++
	}
}

// AddMonthsClamped прибавляет n месяцев к t, ограничивая день последним днём месяца.
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
