package calculation

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexcalc/nexcalc/internal/domain"
	"github.com/nexcalc/nexcalc/internal/lookback"
)

// Crossing records the transaction at which a jurisdiction's threshold first
// became satisfied.
type Crossing struct {
	NexusDate     time.Time
	TransactionID uuid.UUID
}

// DetectCrossing walks transactions in chronological order and returns the
// first crossing under the jurisdiction's lookback policy and threshold
// operator. A nil crossing with a nil error means no nexus was established;
// that is a valid terminal outcome.
func DetectCrossing(txs []domain.TransactionRecord, cfg domain.JurisdictionConfig) (*Crossing, error) {
	eval, err := lookback.NewEvaluator(cfg.LookbackPolicy)
	if err != nil {
		return nil, err
	}

	for _, tx := range txs {
		eval.Add(tx)
		for _, w := range eval.Windows(tx.Date) {
			if !w.Testable {
				continue
			}
			if meetsThreshold(cfg, w) {
				return &Crossing{NexusDate: tx.Date, TransactionID: tx.ID}, nil
			}
		}
	}
	return nil, nil
}

// meetsThreshold applies the configured revenue/count conditions to a window.
// Under "and" both configured conditions must hold on the same window; an
// unconfigured condition does not participate.
func meetsThreshold(cfg domain.JurisdictionConfig, w lookback.Window) bool {
	if cfg.ThresholdAmount == nil && cfg.ThresholdCount == nil {
		return false
	}

	revenueOK := cfg.ThresholdAmount != nil && w.Total.GreaterThanOrEqual(*cfg.ThresholdAmount)
	countOK := cfg.ThresholdCount != nil && w.Count >= *cfg.ThresholdCount

	if cfg.ThresholdOperator == domain.OperatorAnd {
		if cfg.ThresholdAmount != nil && !revenueOK {
			return false
		}
		if cfg.ThresholdCount != nil && !countOK {
			return false
		}
		return true
	}
	return revenueOK || countOK
}
