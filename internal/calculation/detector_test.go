package calculation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexcalc/nexcalc/internal/domain"
)

func tx(date string, amount float64) domain.TransactionRecord {
	return chanTx(date, amount, domain.ChannelDirect)
}

func chanTx(date string, amount float64, channel domain.SalesChannel) domain.TransactionRecord {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return domain.TransactionRecord{
		ID:           uuid.New(),
		Date:         d,
		Jurisdiction: "XX",
		Amount:       decimal.NewFromFloat(amount),
		Channel:      channel,
	}
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func amountPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func intPtr(v int) *int { return &v }

func rollingConfig(thresholdAmount float64) domain.JurisdictionConfig {
	return domain.JurisdictionConfig{
		Jurisdiction:      "XX",
		ThresholdAmount:   amountPtr(thresholdAmount),
		ThresholdOperator: domain.OperatorOr,
		LookbackPolicy:    domain.RollingWindow{Days: 365},
		TaxRate:           decimal.NewFromFloat(0.06),
	}
}

func TestDetectCrossing_FirstSatisfyingTransaction(t *testing.T) {
	cfg := rollingConfig(500)
	txs := []domain.TransactionRecord{
		tx("2022-01-10", 200),
		tx("2022-02-10", 200),
		tx("2022-03-10", 150),
		tx("2022-04-10", 500),
	}

	crossing, err := DetectCrossing(txs, cfg)
	require.NoError(t, err)
	require.NotNil(t, crossing, "Should find a crossing")
	assert.Equal(t, mustDate("2022-03-10"), crossing.NexusDate, "Crossing is the transaction that tips the window over")
	assert.Equal(t, txs[2].ID, crossing.TransactionID)
}

func TestDetectCrossing_SingleLargeTransaction(t *testing.T) {
	cfg := rollingConfig(500)
	txs := []domain.TransactionRecord{tx("2022-06-01", 750)}

	crossing, err := DetectCrossing(txs, cfg)
	require.NoError(t, err)
	require.NotNil(t, crossing)
	assert.Equal(t, mustDate("2022-06-01"), crossing.NexusDate)
}

func TestDetectCrossing_NoNexusIsNotAnError(t *testing.T) {
	cfg := rollingConfig(1000000)
	txs := []domain.TransactionRecord{tx("2022-01-10", 200), tx("2022-02-10", 200)}

	crossing, err := DetectCrossing(txs, cfg)
	require.NoError(t, err, "No nexus is a valid terminal outcome")
	assert.Nil(t, crossing)
}

func TestDetectCrossing_AndOperatorRequiresBothOnSameTransaction(t *testing.T) {
	cfg := domain.JurisdictionConfig{
		Jurisdiction:      "XX",
		ThresholdAmount:   amountPtr(300),
		ThresholdCount:    intPtr(3),
		ThresholdOperator: domain.OperatorAnd,
		LookbackPolicy:    domain.RollingWindow{Days: 365},
		TaxRate:           decimal.NewFromFloat(0.06),
	}
	txs := []domain.TransactionRecord{
		tx("2022-01-10", 400), // revenue met, count not
		tx("2022-02-10", 1),
		tx("2022-03-10", 1), // both conditions now hold
	}

	crossing, err := DetectCrossing(txs, cfg)
	require.NoError(t, err)
	require.NotNil(t, crossing)
	assert.Equal(t, mustDate("2022-03-10"), crossing.NexusDate, "Both conditions must hold on the same transaction")
}

func TestDetectCrossing_OrOperatorCountAlone(t *testing.T) {
	cfg := domain.JurisdictionConfig{
		Jurisdiction:      "XX",
		ThresholdAmount:   amountPtr(100000),
		ThresholdCount:    intPtr(2),
		ThresholdOperator: domain.OperatorOr,
		LookbackPolicy:    domain.RollingWindow{Days: 365},
		TaxRate:           decimal.NewFromFloat(0.06),
	}
	txs := []domain.TransactionRecord{tx("2022-01-10", 5), tx("2022-02-10", 5)}

	crossing, err := DetectCrossing(txs, cfg)
	require.NoError(t, err)
	require.NotNil(t, crossing)
	assert.Equal(t, mustDate("2022-02-10"), crossing.NexusDate)
}

func TestDetectCrossing_PreviousYearPolicyCrossesInFollowingYear(t *testing.T) {
	cfg := domain.JurisdictionConfig{
		Jurisdiction:      "XX",
		ThresholdAmount:   amountPtr(500),
		ThresholdOperator: domain.OperatorOr,
		LookbackPolicy:    domain.PreviousCalendarYear{},
		TaxRate:           decimal.NewFromFloat(0.06),
	}
	txs := []domain.TransactionRecord{
		tx("2022-03-01", 600), // meets the threshold, but only as 2023's prior year
		tx("2023-01-15", 10),
	}

	crossing, err := DetectCrossing(txs, cfg)
	require.NoError(t, err)
	require.NotNil(t, crossing)
	assert.Equal(t, mustDate("2023-01-15"), crossing.NexusDate, "Prior-year window first satisfies on the first transaction of the next year")
}

func TestDetectCrossing_QuarterWindowInsufficientHistory(t *testing.T) {
	cfg := domain.JurisdictionConfig{
		Jurisdiction:      "XX",
		ThresholdAmount:   amountPtr(100),
		ThresholdOperator: domain.OperatorOr,
		LookbackPolicy:    domain.QuarterWindow{Quarters: 4},
		TaxRate:           decimal.NewFromFloat(0.06),
	}
	txs := []domain.TransactionRecord{tx("2022-01-10", 5000), tx("2022-02-10", 5000)}

	crossing, err := DetectCrossing(txs, cfg)
	require.NoError(t, err)
	assert.Nil(t, crossing, "Threshold is not yet testable without four quarters of history")
}
