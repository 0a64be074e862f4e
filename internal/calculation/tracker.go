package calculation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexcalc/nexcalc/internal/domain"
)

// YearObligation is the tracker's per-year determination: whether nexus was in
// force, from what date liability accrues, and the year's total sales across
// all channels.
type YearObligation struct {
	Year            int
	NexusDate       *time.Time
	ObligationStart *time.Time
	FirstNexusYear  *int
	TotalSales      decimal.Decimal
}

// TrackYears walks a jurisdiction's full transaction history and produces one
// YearObligation per calendar year spanned by the history, applying sticky
// nexus: once established, later years carry a full-year obligation without
// re-testing the threshold, even if sales fall below it.
//
// Transactions must be sorted by date ascending.
func TrackYears(txs []domain.TransactionRecord, cfg domain.JurisdictionConfig) ([]YearObligation, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	// A single chronological pass finds the global first crossing; every year
	// before it is NoNexus and every year from it on is Established, so the
	// per-year state machine collapses to position relative to the crossing.
	crossing, err := DetectCrossing(txs, cfg)
	if err != nil {
		return nil, err
	}

	salesByYear := map[int]decimal.Decimal{}
	for _, tx := range txs {
		salesByYear[tx.Year()] = salesByYear[tx.Year()].Add(tx.Amount)
	}

	firstYear := txs[0].Year()
	lastYear := txs[len(txs)-1].Year()

	var outcomes []YearObligation
	for year := firstYear; year <= lastYear; year++ {
		out := YearObligation{
			Year:       year,
			TotalSales: salesByYear[year],
		}
		if crossing != nil && year >= crossing.NexusDate.Year() {
			establishmentYear := crossing.NexusDate.Year()
			out.FirstNexusYear = &establishmentYear

			var start time.Time
			if year == establishmentYear {
				nexusDate := crossing.NexusDate
				out.NexusDate = &nexusDate
				start = firstOfFollowingMonth(nexusDate)
			} else {
				start = time.Date(year, time.January, 1, 0, 0, 0, 0, crossing.NexusDate.Location())
			}
			out.ObligationStart = &start
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// firstOfFollowingMonth returns the first day of the month after d. A December
// date rolls into January of the next year.
func firstOfFollowingMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, d.Location())
}
