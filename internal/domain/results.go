package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NexusYearResult is the engine's output for one jurisdiction and one
// calendar year. Monetary fields are rounded to cents; Interest and Penalties
// are never negative and TotalLiability = BaseTax + Interest + Penalties.
type NexusYearResult struct {
	Year                int             `json:"year"`
	NexusDate           *time.Time      `json:"nexusDate,omitempty"`
	ObligationStartDate *time.Time      `json:"obligationStartDate,omitempty"`
	FirstNexusYear      *int            `json:"firstNexusYear,omitempty"`
	TotalSales          decimal.Decimal `json:"totalSales"`
	TaxableSales        decimal.Decimal `json:"taxableSales"`
	BaseTax             decimal.Decimal `json:"baseTax"`
	Interest            decimal.Decimal `json:"interest"`
	Penalties           decimal.Decimal `json:"penalties"`
	TotalLiability      decimal.Decimal `json:"totalLiability"`
}

// HasNexus reports whether the jurisdiction owed collection for this year.
func (r NexusYearResult) HasNexus() bool {
	return r.ObligationStartDate != nil
}

// VdaResult mirrors a year's monetary fields recomputed under the truncated
// voluntary-disclosure lookback.
type VdaResult struct {
	Year                int             `json:"year"`
	ObligationStartDate *time.Time      `json:"obligationStartDate,omitempty"`
	TaxableSales        decimal.Decimal `json:"taxableSales"`
	BaseTax             decimal.Decimal `json:"baseTax"`
	Interest            decimal.Decimal `json:"interest"`
	Penalties           decimal.Decimal `json:"penalties"`
	TotalLiability      decimal.Decimal `json:"totalLiability"`
}

// AllYearsRollup sums the per-year amounts for one jurisdiction. The interest
// method is carried for display only; the underlying per-year amounts were
// computed independently.
type AllYearsRollup struct {
	BaseTax        decimal.Decimal `json:"baseTax"`
	Interest       decimal.Decimal `json:"interest"`
	Penalties      decimal.Decimal `json:"penalties"`
	TotalLiability decimal.Decimal `json:"totalLiability"`
	InterestMethod InterestMethod  `json:"interestMethod"`
}

// VdaSummary aggregates the VDA scenario and its savings against the standard
// scenario.
type VdaSummary struct {
	EffectiveStart time.Time       `json:"effectiveStart"`
	BaseTax        decimal.Decimal `json:"baseTax"`
	Interest       decimal.Decimal `json:"interest"`
	Penalties      decimal.Decimal `json:"penalties"`
	TotalLiability decimal.Decimal `json:"totalLiability"`
	Savings        decimal.Decimal `json:"savings"`
}

// JurisdictionAnalysis is the full result set for one jurisdiction.
type JurisdictionAnalysis struct {
	Jurisdiction string            `json:"jurisdiction"`
	Years        []NexusYearResult `json:"years"`
	AllYears     AllYearsRollup    `json:"allYears"`
	Vda          []VdaResult       `json:"vda,omitempty"`
	VdaSummary   *VdaSummary       `json:"vdaSummary,omitempty"`

	// Degraded marks results computed with substituted defaults or results
	// that could not be computed at all; Notes says why.
	Degraded bool     `json:"degraded,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}

// AnalysisReport is the output of one engine run across all jurisdictions.
type AnalysisReport struct {
	RunID           uuid.UUID              `json:"runId"`
	CalculationDate time.Time              `json:"calculationDate"`
	Jurisdictions   []JurisdictionAnalysis `json:"jurisdictions"`
}
