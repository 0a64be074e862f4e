package calculation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/nexcalc/nexcalc/internal/domain"
)

// Input is everything one engine run needs. The engine itself holds no run
// state; results are a pure function of the input.
type Input struct {
	Transactions    []domain.TransactionRecord
	Jurisdictions   map[string]domain.JurisdictionConfig
	InterestPenalty map[string]domain.InterestPenaltyConfig
	CalculationDate time.Time

	// VdaFilingDate, when set, anchors the VDA lookback truncation instead of
	// CalculationDate. Interest in both scenarios still accrues to
	// CalculationDate.
	VdaFilingDate *time.Time
	IncludeVda    bool
}

// Engine fans the nexus pipeline out across jurisdictions.
type Engine struct {
	Logger Logger
}

// NewEngine creates an engine with a no-op logger.
func NewEngine() *Engine {
	return &Engine{Logger: NopLogger{}}
}

// SetLogger replaces the engine's logger; nil restores the no-op logger.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.Logger = l
}

// Run evaluates every jurisdiction present in the transaction set. Each
// jurisdiction is an independent pure function of its own slice and config, so
// they run in parallel; output ordering is by jurisdiction code and therefore
// deterministic. A jurisdiction whose configuration is missing or malformed
// produces a degraded analysis instead of failing the batch.
func (e *Engine) Run(ctx context.Context, in Input) (*domain.AnalysisReport, error) {
	if in.CalculationDate.IsZero() {
		return nil, fmt.Errorf("calculation date is required")
	}

	byJurisdiction := partition(in.Transactions)
	codes := make([]string, 0, len(byJurisdiction))
	for code := range byJurisdiction {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	analyses := make([]domain.JurisdictionAnalysis, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			analyses[i] = e.analyzeJurisdiction(code, byJurisdiction[code], in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &domain.AnalysisReport{
		RunID:           uuid.New(),
		CalculationDate: in.CalculationDate,
		Jurisdictions:   analyses,
	}
	e.Logger.Infof("analyzed %d jurisdictions across %d transactions", len(codes), len(in.Transactions))
	return report, nil
}

// partition splits transactions by jurisdiction and sorts each slice by date.
// The sort is an internal invariant, not input validation.
func partition(txs []domain.TransactionRecord) map[string][]domain.TransactionRecord {
	out := map[string][]domain.TransactionRecord{}
	for _, tx := range txs {
		out[tx.Jurisdiction] = append(out[tx.Jurisdiction], tx)
	}
	for _, slice := range out {
		sort.SliceStable(slice, func(i, j int) bool { return slice[i].Date.Before(slice[j].Date) })
	}
	return out
}

func (e *Engine) analyzeJurisdiction(code string, txs []domain.TransactionRecord, in Input) domain.JurisdictionAnalysis {
	analysis := domain.JurisdictionAnalysis{Jurisdiction: code}

	cfg, ok := in.Jurisdictions[code]
	if !ok {
		e.Logger.Warnf("%s: no jurisdiction config; nexus cannot be determined", code)
		analysis.Degraded = true
		analysis.Notes = append(analysis.Notes, "no jurisdiction configuration; nexus not evaluated")
		return analysis
	}
	if err := validateJurisdictionConfig(cfg); err != nil {
		e.Logger.Errorf("%s: invalid jurisdiction config: %v", code, err)
		analysis.Degraded = true
		analysis.Notes = append(analysis.Notes, fmt.Sprintf("invalid jurisdiction configuration: %v", err))
		return analysis
	}

	ipCfg, ok := in.InterestPenalty[code]
	if !ok {
		e.Logger.Warnf("%s: no interest/penalty config; using conservative defaults", code)
		ipCfg = domain.DefaultInterestPenaltyConfig()
		analysis.Degraded = true
		analysis.Notes = append(analysis.Notes, "interest/penalty defaults substituted")
	}

	obligations, err := TrackYears(txs, cfg)
	if err != nil {
		e.Logger.Errorf("%s: nexus tracking failed: %v", code, err)
		analysis.Degraded = true
		analysis.Notes = append(analysis.Notes, fmt.Sprintf("nexus tracking failed: %v", err))
		return analysis
	}

	txsByYear := map[int][]domain.TransactionRecord{}
	for _, tx := range txs {
		txsByYear[tx.Year()] = append(txsByYear[tx.Year()], tx)
	}

	for _, obligation := range obligations {
		year := buildYearResult(obligation, txsByYear[obligation.Year], cfg, ipCfg, in.CalculationDate)
		analysis.Years = append(analysis.Years, year)

		analysis.AllYears.BaseTax = analysis.AllYears.BaseTax.Add(year.BaseTax)
		analysis.AllYears.Interest = analysis.AllYears.Interest.Add(year.Interest)
		analysis.AllYears.Penalties = analysis.AllYears.Penalties.Add(year.Penalties)
		analysis.AllYears.TotalLiability = analysis.AllYears.TotalLiability.Add(year.TotalLiability)
	}
	analysis.AllYears.InterestMethod = ipCfg.InterestMethod

	if in.IncludeVda {
		buildVda(&analysis, obligations, txsByYear, cfg, ipCfg, in)
	}
	return analysis
}

func buildYearResult(obligation YearObligation, yearTxs []domain.TransactionRecord, cfg domain.JurisdictionConfig, ipCfg domain.InterestPenaltyConfig, calculationDate time.Time) domain.NexusYearResult {
	result := domain.NexusYearResult{
		Year:           obligation.Year,
		NexusDate:      obligation.NexusDate,
		FirstNexusYear: obligation.FirstNexusYear,
		TotalSales:     obligation.TotalSales,
		TaxableSales:   decimal.Zero,
		BaseTax:        decimal.Zero,
		Interest:       decimal.Zero,
		Penalties:      decimal.Zero,
		TotalLiability: decimal.Zero,
	}
	if obligation.ObligationStart == nil {
		return result
	}
	result.ObligationStartDate = obligation.ObligationStart

	liability := ComputeLiability(yearTxs, *obligation.ObligationStart, cfg)
	charges := ComputeCharges(liability.BaseTax, *obligation.ObligationStart, calculationDate, ipCfg)

	result.TaxableSales = liability.TaxableSales
	result.BaseTax = liability.BaseTax
	result.Interest = charges.Interest
	result.Penalties = charges.Penalties
	result.TotalLiability = liability.BaseTax.Add(charges.Total())
	return result
}

func buildVda(analysis *domain.JurisdictionAnalysis, obligations []YearObligation, txsByYear map[int][]domain.TransactionRecord, cfg domain.JurisdictionConfig, ipCfg domain.InterestPenaltyConfig, in Input) {
	vdaDate := in.CalculationDate
	if in.VdaFilingDate != nil {
		vdaDate = *in.VdaFilingDate
	}

	summary := domain.VdaSummary{
		EffectiveStart: vdaDate.AddDate(0, -ipCfg.VdaLookbackMonths, 0),
		BaseTax:        decimal.Zero,
		Interest:       decimal.Zero,
		Penalties:      decimal.Zero,
		TotalLiability: decimal.Zero,
		Savings:        decimal.Zero,
	}

	for _, obligation := range obligations {
		if obligation.ObligationStart == nil {
			continue
		}
		effectiveStart := VdaEffectiveStart(*obligation.ObligationStart, vdaDate, ipCfg.VdaLookbackMonths)
		liability := ComputeLiability(txsByYear[obligation.Year], effectiveStart, cfg)
		charges := ComputeVdaCharges(liability.BaseTax, effectiveStart, in.CalculationDate, ipCfg)

		start := effectiveStart
		vdaYear := domain.VdaResult{
			Year:                obligation.Year,
			ObligationStartDate: &start,
			TaxableSales:        liability.TaxableSales,
			BaseTax:             liability.BaseTax,
			Interest:            charges.Interest,
			Penalties:           charges.Penalties,
			TotalLiability:      liability.BaseTax.Add(charges.Total()),
		}
		analysis.Vda = append(analysis.Vda, vdaYear)

		summary.BaseTax = summary.BaseTax.Add(vdaYear.BaseTax)
		summary.Interest = summary.Interest.Add(vdaYear.Interest)
		summary.Penalties = summary.Penalties.Add(vdaYear.Penalties)
		summary.TotalLiability = summary.TotalLiability.Add(vdaYear.TotalLiability)
	}

	summary.Savings = analysis.AllYears.TotalLiability.Sub(summary.TotalLiability)
	analysis.VdaSummary = &summary
}

// validateJurisdictionConfig rejects configs the pipeline cannot evaluate.
// Failures degrade the jurisdiction, never the batch.
func validateJurisdictionConfig(cfg domain.JurisdictionConfig) error {
	if cfg.ThresholdAmount == nil && cfg.ThresholdCount == nil {
		return fmt.Errorf("at least one of threshold amount or count is required")
	}
	if cfg.ThresholdAmount != nil && cfg.ThresholdAmount.IsNegative() {
		return fmt.Errorf("threshold amount cannot be negative")
	}
	if cfg.ThresholdCount != nil && *cfg.ThresholdCount < 0 {
		return fmt.Errorf("threshold count cannot be negative")
	}
	if !cfg.ThresholdOperator.Valid() {
		return fmt.Errorf("unknown threshold operator %q", cfg.ThresholdOperator)
	}
	if cfg.LookbackPolicy == nil {
		return fmt.Errorf("lookback policy is required")
	}
	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate must be between 0 and 1, got %s", cfg.TaxRate)
	}
	return nil
}
