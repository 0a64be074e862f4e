package calculation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexcalc/nexcalc/internal/domain"
)

func TestTrackYears_StickyNexus(t *testing.T) {
	cfg := rollingConfig(500)
	txs := []domain.TransactionRecord{
		tx("2021-02-01", 100), // below threshold all of 2021
		tx("2022-03-15", 600), // crossing
		tx("2023-05-01", 5),   // well below threshold, nexus persists anyway
		tx("2024-08-01", 5),
	}

	outcomes, err := TrackYears(txs, cfg)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	y2021 := outcomes[0]
	assert.Nil(t, y2021.ObligationStart, "No nexus before the crossing")
	assert.Nil(t, y2021.FirstNexusYear)

	y2022 := outcomes[1]
	require.NotNil(t, y2022.NexusDate)
	assert.Equal(t, mustDate("2022-03-15"), *y2022.NexusDate)
	require.NotNil(t, y2022.ObligationStart)
	assert.Equal(t, mustDate("2022-04-01"), *y2022.ObligationStart, "Obligation starts the first of the month after crossing")
	require.NotNil(t, y2022.FirstNexusYear)
	assert.Equal(t, 2022, *y2022.FirstNexusYear)

	for _, out := range outcomes[2:] {
		require.NotNil(t, out.ObligationStart, "Nexus is sticky in year %d", out.Year)
		assert.Equal(t, time.Date(out.Year, time.January, 1, 0, 0, 0, 0, time.UTC), *out.ObligationStart,
			"Later years carry a full-year obligation")
		assert.Nil(t, out.NexusDate, "Only the establishment year records a nexus date")
		require.NotNil(t, out.FirstNexusYear)
		assert.Equal(t, 2022, *out.FirstNexusYear)
	}
}

func TestTrackYears_DecemberCrossingRollsIntoJanuary(t *testing.T) {
	cfg := rollingConfig(500)
	txs := []domain.TransactionRecord{
		tx("2022-12-20", 900),
		tx("2023-02-01", 10),
	}

	outcomes, err := TrackYears(txs, cfg)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	require.NotNil(t, outcomes[0].ObligationStart)
	assert.Equal(t, mustDate("2023-01-01"), *outcomes[0].ObligationStart,
		"December crossing produces a January 1 obligation start in the next year")
}

func TestTrackYears_NoNexusAcrossAllYears(t *testing.T) {
	cfg := rollingConfig(100000)
	txs := []domain.TransactionRecord{tx("2021-02-01", 100), tx("2023-02-01", 100)}

	outcomes, err := TrackYears(txs, cfg)
	require.NoError(t, err)
	require.Len(t, outcomes, 3, "One outcome per calendar year spanned, including the empty 2022")

	for _, out := range outcomes {
		assert.Nil(t, out.ObligationStart)
		assert.Nil(t, out.NexusDate)
	}
	assert.True(t, outcomes[1].TotalSales.IsZero(), "Empty year has zero sales")
}

func TestTrackYears_EmptyHistory(t *testing.T) {
	outcomes, err := TrackYears(nil, rollingConfig(500))
	require.NoError(t, err)
	assert.Nil(t, outcomes)
}

func TestTrackYears_TotalSalesAreAllChannels(t *testing.T) {
	cfg := rollingConfig(500)
	txs := []domain.TransactionRecord{
		chanTx("2022-01-10", 300, domain.ChannelDirect),
		chanTx("2022-02-10", 300, domain.ChannelMarketplace),
	}

	outcomes, err := TrackYears(txs, cfg)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "600", outcomes[0].TotalSales.String(), "Total sales ignore channel")
}
