package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cadence/internal/shared/biztime"
)

// BillingCycle is the cadence a plan bills on.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

var ValidBillingCycles = map[BillingCycle]bool{
	BillingCycleMonthly: true,
	BillingCycleYearly:  true,
}

var monthsPerYear = decimal.NewFromInt(12)

// ParseBillingCycle normalizes and validates a billing cycle string.
func ParseBillingCycle(value string) (BillingCycle, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	cycle := BillingCycle(normalized)

	if normalized == "" {
		return "", fmt.Errorf("billing cycle cannot be empty")
	}
	if !ValidBillingCycles[cycle] {
		return "", fmt.Errorf("invalid billing cycle: %s", value)
	}

	return cycle, nil
}

func (b BillingCycle) String() string {
	return string(b)
}

func (b BillingCycle) IsValid() bool {
	return ValidBillingCycles[b]
}

// NextBillingDate returns the next billing anchor after from. Calendar
// arithmetic clamps month-end overflow, so a monthly plan anchored on
// Jan 31 bills on the last day of February next.
func (b BillingCycle) NextBillingDate(from time.Time) time.Time {
	switch b {
	case BillingCycleMonthly:
		return biztime.AddMonths(from, 1)
	case BillingCycleYearly:
		return biztime.AddYears(from, 1)
	default:
		return time.Time{}
	}
}

// MonthlyEquivalent converts a plan price on this cycle to its monthly
// revenue contribution: yearly prices contribute price/12.
func (b BillingCycle) MonthlyEquivalent(price decimal.Decimal) decimal.Decimal {
	if b == BillingCycleYearly {
		return price.DivRound(monthsPerYear, 2)
	}
	return price
}
