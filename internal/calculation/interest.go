package calculation

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexcalc/nexcalc/internal/domain"
)

var daysPerYearMean = decimal.NewFromFloat(365.25)

const daysPerMonthMean = 30.44

// Charges holds a year's accrued interest and clamped penalties, rounded to
// cents. Both are always >= 0.
type Charges struct {
	Interest  decimal.Decimal
	Penalties decimal.Decimal
}

// Total returns interest plus penalties.
func (c Charges) Total() decimal.Decimal {
	return c.Interest.Add(c.Penalties)
}

// ComputeCharges accrues interest on baseTax from the obligation start to the
// calculation date under the configured method, then applies the penalty rate
// with its floor/cap. Zero base tax yields zero charges regardless of elapsed
// time; a calculation date at or before the obligation start yields zero
// interest by construction, not by clamping a negative result.
func ComputeCharges(baseTax decimal.Decimal, obligationStart, calculationDate time.Time, cfg domain.InterestPenaltyConfig) Charges {
	if baseTax.LessThanOrEqual(decimal.Zero) {
		return Charges{Interest: decimal.Zero, Penalties: decimal.Zero}
	}

	days := elapsedDays(obligationStart, calculationDate)
	interest := accrueInterest(baseTax, days, cfg).Round(2)
	penalties := applyPenalty(baseTax, interest, cfg).Round(2)

	return Charges{Interest: interest, Penalties: penalties}
}

// elapsedDays returns whole days between start and end, never negative.
func elapsedDays(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}

func accrueInterest(baseTax decimal.Decimal, days int, cfg domain.InterestPenaltyConfig) decimal.Decimal {
	if days == 0 {
		return decimal.Zero
	}

	switch cfg.InterestMethod {
	case domain.InterestCompoundMonthly:
		months := float64(days) / daysPerMonthMean
		monthlyRate, _ := cfg.AnnualInterestRate.PerMonth().Decimal().Float64()
		return baseTax.Mul(growthFactorMinusOne(monthlyRate, months))
	case domain.InterestCompoundDaily:
		dailyRate, _ := cfg.AnnualInterestRate.PerDay().Decimal().Float64()
		return baseTax.Mul(growthFactorMinusOne(dailyRate, float64(days)))
	default: // simple
		years := decimal.NewFromInt(int64(days)).Div(daysPerYearMean)
		return baseTax.Mul(cfg.AnnualInterestRate.Decimal()).Mul(years)
	}
}

// growthFactorMinusOne computes (1+rate)^periods - 1. The exponentiation runs
// in float64 (periods are fractional for monthly compounding); only the
// dimensionless factor passes through float, money stays decimal.
func growthFactorMinusOne(rate, periods float64) decimal.Decimal {
	return decimal.NewFromFloat(math.Pow(1+rate, periods) - 1)
}

func applyPenalty(baseTax, interest decimal.Decimal, cfg domain.InterestPenaltyConfig) decimal.Decimal {
	base := baseTax
	if cfg.PenaltyBase == domain.PenaltyOnTaxPlusInterest {
		base = baseTax.Add(interest)
	}
	penalty := base.Mul(cfg.PenaltyRate)

	if cfg.PenaltyMin != nil && penalty.LessThan(*cfg.PenaltyMin) {
		penalty = *cfg.PenaltyMin
	}
	if cfg.PenaltyMax != nil && penalty.GreaterThan(*cfg.PenaltyMax) {
		penalty = *cfg.PenaltyMax
	}
	if penalty.IsNegative() {
		penalty = decimal.Zero
	}
	return penalty
}

// VdaEffectiveStart truncates an obligation start to the voluntary-disclosure
// lookback: liability cannot reach further back than lookbackMonths before the
// VDA date.
func VdaEffectiveStart(obligationStart, vdaDate time.Time, lookbackMonths int) time.Time {
	earliest := vdaDate.AddDate(0, -lookbackMonths, 0)
	if obligationStart.After(earliest) {
		return obligationStart
	}
	return earliest
}

// ComputeVdaCharges recomputes charges under the VDA scenario, zeroing
// whatever the jurisdiction waives.
func ComputeVdaCharges(baseTax decimal.Decimal, effectiveStart, calculationDate time.Time, cfg domain.InterestPenaltyConfig) Charges {
	charges := ComputeCharges(baseTax, effectiveStart, calculationDate, cfg)
	if cfg.VdaInterestWaived {
		charges.Interest = decimal.Zero
	}
	if cfg.VdaPenaltiesWaived {
		charges.Penalties = decimal.Zero
	}
	return charges
}
