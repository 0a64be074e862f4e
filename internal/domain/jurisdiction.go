package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ThresholdOperator combines the revenue and count conditions of an economic
// nexus threshold.
type ThresholdOperator string

const (
	OperatorAnd ThresholdOperator = "and"
	OperatorOr  ThresholdOperator = "or"
)

// Valid reports whether the operator is one of the known values.
func (op ThresholdOperator) Valid() bool {
	return op == OperatorAnd || op == OperatorOr
}

// JurisdictionConfig is the active nexus rule set for one jurisdiction. At
// least one of ThresholdAmount / ThresholdCount must be set.
type JurisdictionConfig struct {
	Jurisdiction               string
	ThresholdAmount            *decimal.Decimal
	ThresholdCount             *int
	ThresholdOperator          ThresholdOperator
	LookbackPolicy             LookbackPolicy
	TaxRate                    decimal.Decimal
	MarketplaceLawEffectiveDate *time.Time
}

// InterestMethod selects how interest accrues on unpaid tax.
type InterestMethod string

const (
	InterestSimple          InterestMethod = "simple"
	InterestCompoundMonthly InterestMethod = "compound_monthly"
	InterestCompoundDaily   InterestMethod = "compound_daily"
)

// Valid reports whether the method is one of the known values.
func (m InterestMethod) Valid() bool {
	switch m {
	case InterestSimple, InterestCompoundMonthly, InterestCompoundDaily:
		return true
	}
	return false
}

// PenaltyBase selects what amount the penalty rate applies to.
type PenaltyBase string

const (
	PenaltyOnTaxOnly         PenaltyBase = "tax_only"
	PenaltyOnTaxPlusInterest PenaltyBase = "tax_plus_interest"
)

// Valid reports whether the base is one of the known values.
func (b PenaltyBase) Valid() bool {
	return b == PenaltyOnTaxOnly || b == PenaltyOnTaxPlusInterest
}

// InterestPenaltyConfig holds a jurisdiction's interest accrual and penalty
// rules plus its voluntary-disclosure terms.
type InterestPenaltyConfig struct {
	AnnualInterestRate AnnualRate
	InterestMethod     InterestMethod
	PenaltyRate        decimal.Decimal
	PenaltyMin         *decimal.Decimal
	PenaltyMax         *decimal.Decimal
	PenaltyBase        PenaltyBase
	VdaInterestWaived  bool
	VdaPenaltiesWaived bool
	VdaLookbackMonths  int
}

// DefaultInterestPenaltyConfig is the conservative fallback applied when a
// jurisdiction has no interest/penalty configuration. Results computed with it
// are flagged degraded-confidence.
func DefaultInterestPenaltyConfig() InterestPenaltyConfig {
	return InterestPenaltyConfig{
		AnnualInterestRate: AnnualRateFromFloat(0.03),
		InterestMethod:     InterestSimple,
		PenaltyRate:        decimal.NewFromFloat(0.10),
		PenaltyBase:        PenaltyOnTaxOnly,
		VdaInterestWaived:  false,
		VdaPenaltiesWaived: false,
		VdaLookbackMonths:  48,
	}
}
