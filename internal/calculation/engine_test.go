package calculation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexcalc/nexcalc/internal/domain"
)

func multiYearInput() Input {
	txs := []domain.TransactionRecord{
		tx("2018-03-01", 700), // crossing
		tx("2019-04-01", 400),
		tx("2020-05-01", 400),
		tx("2021-06-01", 400),
		tx("2022-07-01", 400),
		tx("2023-08-01", 400),
	}
	for i := range txs {
		txs[i].Jurisdiction = "CA"
	}
	return Input{
		Transactions: txs,
		Jurisdictions: map[string]domain.JurisdictionConfig{
			"CA": rollingConfig(500),
		},
		InterestPenalty: map[string]domain.InterestPenaltyConfig{
			"CA": domain.DefaultInterestPenaltyConfig(),
		},
		CalculationDate: mustDate("2024-06-30"),
	}
}

func TestEngine_RunRequiresCalculationDate(t *testing.T) {
	engine := NewEngine()
	_, err := engine.Run(context.Background(), Input{})
	assert.Error(t, err)
}

func TestEngine_YearResultsAndRollup(t *testing.T) {
	engine := NewEngine()
	report, err := engine.Run(context.Background(), multiYearInput())
	require.NoError(t, err)
	require.Len(t, report.Jurisdictions, 1)

	analysis := report.Jurisdictions[0]
	assert.Equal(t, "CA", analysis.Jurisdiction)
	assert.False(t, analysis.Degraded)
	require.Len(t, analysis.Years, 6)

	establishment := analysis.Years[0]
	require.NotNil(t, establishment.NexusDate)
	assert.Equal(t, mustDate("2018-03-01"), *establishment.NexusDate)
	require.NotNil(t, establishment.ObligationStartDate)
	assert.Equal(t, mustDate("2018-04-01"), *establishment.ObligationStartDate)

	rollup := analysis.AllYears
	sumTax, sumTotal := decimal.Zero, decimal.Zero
	for _, year := range analysis.Years {
		assert.False(t, year.Interest.IsNegative())
		assert.False(t, year.Penalties.IsNegative())
		assert.True(t, year.TotalLiability.Equal(year.BaseTax.Add(year.Interest).Add(year.Penalties)),
			"Year %d liability identity", year.Year)
		sumTax = sumTax.Add(year.BaseTax)
		sumTotal = sumTotal.Add(year.TotalLiability)
	}
	assert.True(t, rollup.BaseTax.Equal(sumTax))
	assert.True(t, rollup.TotalLiability.Equal(sumTotal))
	assert.Equal(t, domain.InterestSimple, rollup.InterestMethod)
}

func TestEngine_Idempotent(t *testing.T) {
	engine := NewEngine()
	in := multiYearInput()

	first, err := engine.Run(context.Background(), in)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), in)
	require.NoError(t, err)

	// RunID differs per run; the computed result sets must not.
	assert.Equal(t, first.Jurisdictions, second.Jurisdictions)
}

func TestEngine_VdaTruncationSaves(t *testing.T) {
	engine := NewEngine()
	in := multiYearInput()
	in.IncludeVda = true

	report, err := engine.Run(context.Background(), in)
	require.NoError(t, err)
	analysis := report.Jurisdictions[0]

	require.NotNil(t, analysis.VdaSummary)
	assert.Equal(t, mustDate("2020-06-30"), analysis.VdaSummary.EffectiveStart,
		"48-month lookback behind the calculation date")
	assert.True(t, analysis.VdaSummary.EffectiveStart.After(*analysis.Years[0].ObligationStartDate),
		"The VDA start is strictly later than the original obligation start")
	assert.True(t, analysis.VdaSummary.Savings.GreaterThan(decimal.Zero),
		"Truncating a six-year obligation to 48 months must save money")
	assert.True(t, analysis.VdaSummary.TotalLiability.Add(analysis.VdaSummary.Savings).Equal(analysis.AllYears.TotalLiability))

	// 2018 and 2019 fall wholly before the VDA horizon.
	require.NotEmpty(t, analysis.Vda)
	assert.True(t, analysis.Vda[0].BaseTax.IsZero(), "Truncated-out year carries no VDA tax")
}

func TestEngine_VdaFilingDateOverridesTruncationAnchor(t *testing.T) {
	engine := NewEngine()
	in := multiYearInput()
	in.IncludeVda = true
	filing := mustDate("2023-06-30")
	in.VdaFilingDate = &filing

	report, err := engine.Run(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, report.Jurisdictions[0].VdaSummary)
	assert.Equal(t, mustDate("2019-06-30"), report.Jurisdictions[0].VdaSummary.EffectiveStart)
}

func TestEngine_MissingInterestConfigDegradesWithDefaults(t *testing.T) {
	engine := NewEngine()
	in := multiYearInput()
	in.InterestPenalty = nil

	report, err := engine.Run(context.Background(), in)
	require.NoError(t, err)
	analysis := report.Jurisdictions[0]

	assert.True(t, analysis.Degraded)
	assert.NotEmpty(t, analysis.Notes)
	require.Len(t, analysis.Years, 6, "Defaults substitute; results still computed")
	assert.Equal(t, domain.InterestSimple, analysis.AllYears.InterestMethod)
}

func TestEngine_BadJurisdictionIsolatedFromBatch(t *testing.T) {
	engine := NewEngine()
	in := multiYearInput()
	in.Transactions = append(in.Transactions, tx("2022-01-01", 900)) // jurisdiction XX, no config

	report, err := engine.Run(context.Background(), in)
	require.NoError(t, err, "One unconfigured jurisdiction must not fail the batch")
	require.Len(t, report.Jurisdictions, 2)

	// Deterministic ordering by code.
	assert.Equal(t, "CA", report.Jurisdictions[0].Jurisdiction)
	assert.Equal(t, "XX", report.Jurisdictions[1].Jurisdiction)

	assert.False(t, report.Jurisdictions[0].Degraded)
	assert.True(t, report.Jurisdictions[1].Degraded)
	assert.Empty(t, report.Jurisdictions[1].Years)
}

func TestEngine_InvalidConfigDegrades(t *testing.T) {
	engine := NewEngine()
	in := multiYearInput()
	cfg := in.Jurisdictions["CA"]
	cfg.TaxRate = decimal.NewFromInt(2)
	in.Jurisdictions["CA"] = cfg

	report, err := engine.Run(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, report.Jurisdictions[0].Degraded)
	assert.Empty(t, report.Jurisdictions[0].Years)
}

func TestEngine_UnsortedInputHandled(t *testing.T) {
	engine := NewEngine()
	in := multiYearInput()
	// Reverse the slice; partition re-sorts internally.
	for i, j := 0, len(in.Transactions)-1; i < j; i, j = i+1, j-1 {
		in.Transactions[i], in.Transactions[j] = in.Transactions[j], in.Transactions[i]
	}

	report, err := engine.Run(context.Background(), in)
	require.NoError(t, err)
	establishment := report.Jurisdictions[0].Years[0]
	require.NotNil(t, establishment.NexusDate)
	assert.Equal(t, mustDate("2018-03-01"), *establishment.NexusDate)
}
