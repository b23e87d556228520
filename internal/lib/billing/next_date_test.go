package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextBillingDate(t *testing.T) {
	tests := []struct {
		name  string
		base  time.Time
		cycle models.BillingCycle
		now   time.Time
		want  time.Time
	}{
		{
			name:  "base date in the future is returned as is",
			base:  date(2024, 6, 10),
			cycle: models.BillingCycleMonthly,
			now:   time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC),
			want:  date(2024, 6, 10),
		},
		{
			name:  "base date today is not in the past",
			base:  date(2024, 5, 1),
			cycle: models.BillingCycleMonthly,
			now:   time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC),
			want:  date(2024, 5, 1),
		},
		{
			name:  "monthly advances to this month",
			base:  date(2024, 1, 20),
			cycle: models.BillingCycleMonthly,
			now:   time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC),
			want:  date(2024, 5, 20),
		},
		{
			name:  "monthly advances to next month when day passed",
			base:  date(2024, 1, 5),
			cycle: models.BillingCycleMonthly,
			now:   time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC),
			want:  date(2024, 6, 5),
		},
		{
			name:  "monthly end of month clamps to february",
			base:  date(2024, 1, 31),
			cycle: models.BillingCycleMonthly,
			now:   date(2024, 2, 10),
			want:  date(2024, 2, 29),
		},
		{
			name:  "monthly end of month restores 31 after short month",
			base:  date(2024, 1, 31),
			cycle: models.BillingCycleMonthly,
			now:   date(2024, 3, 1),
			want:  date(2024, 3, 31),
		},
		{
			name:  "yearly advances by years",
			base:  date(2020, 9, 1),
			cycle: models.BillingCycleYearly,
			now:   date(2024, 9, 2),
			want:  date(2025, 9, 1),
		},
		{
			name:  "yearly leap day clamps to 28 february",
			base:  date(2020, 2, 29),
			cycle: models.BillingCycleYearly,
			now:   date(2021, 1, 1),
			want:  date(2021, 2, 28),
		},
		{
			name:  "yearly leap day lands on leap year again",
			base:  date(2020, 2, 29),
			cycle: models.BillingCycleYearly,
			now:   date(2024, 2, 1),
			want:  date(2024, 2, 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextBillingDate(tt.base, tt.cycle, tt.now)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestNextBillingDate_NeverInPast(t *testing.T) {
	base := date(2019, 1, 31)
	for d := 0; d < 800; d += 7 {
		now := date(2023, 1, 1).AddDate(0, 0, d)
		for _, cycle := range []models.BillingCycle{models.BillingCycleMonthly, models.BillingCycleYearly} {
			got := NextBillingDate(base, cycle, now)
			assert.False(t, got.Before(now), "cycle %s now %s got %s", cycle, now, got)
			prev := AddMonthsClamped(got, -cycle.Months())
			assert.True(t, prev.Before(now) || got.Equal(base), "cycle %s now %s: %s is not the first occurrence", cycle, now, got)
		}
	}
}

func TestAddMonthsClamped(t *testing.T) {
	assert.Equal(t, date(2023, 2, 28), AddMonthsClamped(date(2023, 1, 31), 1))
	assert.Equal(t, date(2023, 4, 30), AddMonthsClamped(date(2023, 1, 31), 3))
	assert.Equal(t, date(2024, 1, 15), AddMonthsClamped(date(2023, 12, 15), 1))
	assert.Equal(t, date(2022, 11, 30), AddMonthsClamped(date(2022, 12, 31), -1))
}
