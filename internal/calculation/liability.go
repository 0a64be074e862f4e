package calculation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexcalc/nexcalc/internal/domain"
)

// Liability is a year's taxable base and the tax on it, rounded to cents.
type Liability struct {
	TaxableSales decimal.Decimal
	BaseTax      decimal.Decimal
}

// ComputeLiability sums the taxable transactions dated on or after the
// obligation start. Direct-channel sales always count; marketplace-channel
// sales count only until the jurisdiction's facilitator law shifts collection
// duty to the platform.
func ComputeLiability(txs []domain.TransactionRecord, obligationStart time.Time, cfg domain.JurisdictionConfig) Liability {
	taxable := decimal.Zero
	for _, tx := range txs {
		if tx.Date.Before(obligationStart) {
			continue
		}
		if !sellerLiable(tx, cfg.MarketplaceLawEffectiveDate) {
			continue
		}
		taxable = taxable.Add(tx.Amount)
	}
	return Liability{
		TaxableSales: taxable,
		BaseTax:      taxable.Mul(cfg.TaxRate).Round(2),
	}
}

// sellerLiable reports whether the seller, rather than a marketplace platform,
// owed collection on the transaction.
func sellerLiable(tx domain.TransactionRecord, marketplaceLawDate *time.Time) bool {
	if tx.Channel != domain.ChannelMarketplace {
		return true
	}
	return marketplaceLawDate == nil || tx.Date.Before(*marketplaceLawDate)
}
