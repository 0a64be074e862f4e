package domain

import "github.com/shopspring/decimal"

// The rate types below are deliberately distinct so an annual rate can never
// be handed to code expecting a monthly or daily one. Conversions are explicit.

// AnnualRate is an interest rate expressed per year (0.03 = 3%/yr).
type AnnualRate struct {
	value decimal.Decimal
}

// MonthlyRate is an interest rate expressed per month.
type MonthlyRate struct {
	value decimal.Decimal
}

// DailyRate is an interest rate expressed per day.
type DailyRate struct {
	value decimal.Decimal
}

var (
	twelve             = decimal.NewFromInt(12)
	daysPerYearActuary = decimal.NewFromInt(365)
)

// NewAnnualRate wraps a per-year rate value.
func NewAnnualRate(v decimal.Decimal) AnnualRate {
	return AnnualRate{value: v}
}

// AnnualRateFromFloat is a convenience constructor for literals in tests and
// defaults.
func AnnualRateFromFloat(v float64) AnnualRate {
	return AnnualRate{value: decimal.NewFromFloat(v)}
}

// Decimal returns the per-year rate value.
func (r AnnualRate) Decimal() decimal.Decimal { return r.value }

// IsZero reports whether the rate is zero.
func (r AnnualRate) IsZero() bool { return r.value.IsZero() }

// PerMonth converts to a monthly rate (annual / 12).
func (r AnnualRate) PerMonth() MonthlyRate {
	return MonthlyRate{value: r.value.Div(twelve)}
}

// PerDay converts to a daily rate (annual / 365).
func (r AnnualRate) PerDay() DailyRate {
	return DailyRate{value: r.value.Div(daysPerYearActuary)}
}

// Decimal returns the per-month rate value.
func (r MonthlyRate) Decimal() decimal.Decimal { return r.value }

// Decimal returns the per-day rate value.
func (r DailyRate) Decimal() decimal.Decimal { return r.value }
