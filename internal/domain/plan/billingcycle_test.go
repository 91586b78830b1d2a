package plan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBillingCycle(t *testing.T) {
	tests := []struct {
		input   string
		want    BillingCycle
		wantErr bool
	}{
		{"monthly", BillingCycleMonthly, false},
		{"yearly", BillingCycleYearly, false},
		{"  Monthly ", BillingCycleMonthly, false},
		{"YEARLY", BillingCycleYearly, false},
		{"", "", true},
		{"weekly", "", true},
		{"lifetime", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBillingCycle(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBillingCycle_NextBillingDate(t *testing.T) {
	tests := []struct {
		name  string
		cycle BillingCycle
		from  time.Time
		want  time.Time
	}{
		{
			name:  "monthly mid-month",
			cycle: BillingCycleMonthly,
			from:  time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "monthly jan 31 lands on leap february 29",
			cycle: BillingCycleMonthly,
			from:  time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "monthly jan 31 lands on february 28 in common year",
			cycle: BillingCycleMonthly,
			from:  time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "yearly feb 28 lands on leap february 29",
			cycle: BillingCycleYearly,
			from:  time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "yearly feb 29 clamps to february 28",
			cycle: BillingCycleYearly,
			from:  time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cycle.NextBillingDate(tt.from))
		})
	}
}

func TestBillingCycle_MonthlyEquivalent(t *testing.T) {
	monthly := decimal.RequireFromString("29.99")
	assert.True(t, BillingCycleMonthly.MonthlyEquivalent(monthly).Equal(monthly))

	yearly := decimal.RequireFromString("1200.00")
	assert.True(t, BillingCycleYearly.MonthlyEquivalent(yearly).Equal(decimal.RequireFromString("100.00")))

	oddYearly := decimal.RequireFromString("299.99")
	assert.True(t, BillingCycleYearly.MonthlyEquivalent(oddYearly).Equal(decimal.RequireFromString("25.00")))
}
