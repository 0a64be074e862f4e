// Package config loads and validates the YAML analysis file the CLI feeds the
// engine: the transaction history, per-jurisdiction threshold rules, and
// per-jurisdiction interest/penalty rules.
package config

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/nexcalc/nexcalc/internal/domain"
)

const dateLayout = "2006-01-02"

// Analysis is the fully parsed, validated analysis input.
type Analysis struct {
	CalculationDate time.Time
	VdaFilingDate   *time.Time
	Transactions    []domain.TransactionRecord
	Jurisdictions   map[string]domain.JurisdictionConfig
	InterestPenalty map[string]domain.InterestPenaltyConfig
}

// document is the raw YAML shape. Dates and decimals arrive as strings and are
// parsed during the build step so errors carry field context.
type document struct {
	CalculationDate string            `yaml:"calculation_date"`
	VdaFilingDate   string            `yaml:"vda_filing_date"`
	FiscalYearEnd   *fiscalYearEndDoc `yaml:"fiscal_year_end"`
	Transactions    []transactionDoc  `yaml:"transactions"`
	Jurisdictions   []jurisdictionDoc `yaml:"jurisdictions"`
	InterestPenalty []interestDoc     `yaml:"interest_penalty"`
}

type fiscalYearEndDoc struct {
	Month int `yaml:"month"`
	Day   int `yaml:"day"`
}

type transactionDoc struct {
	ID           string `yaml:"id"`
	Date         string `yaml:"date"`
	Jurisdiction string `yaml:"jurisdiction"`
	Amount       string `yaml:"amount"`
	Channel      string `yaml:"channel"`
}

type jurisdictionDoc struct {
	Code                        string    `yaml:"code"`
	ThresholdAmount             string    `yaml:"threshold_amount"`
	ThresholdCount              *int      `yaml:"threshold_count"`
	ThresholdOperator           string    `yaml:"threshold_operator"`
	LookbackPolicy              policyDoc `yaml:"lookback_policy"`
	TaxRate                     string    `yaml:"tax_rate"`
	MarketplaceLawEffectiveDate string    `yaml:"marketplace_law_effective_date"`
}

type policyDoc struct {
	Type     string `yaml:"type"`
	Days     int    `yaml:"days"`
	Quarters int    `yaml:"quarters"`
	Month    int    `yaml:"month"`
	Day      int    `yaml:"day"`
}

type interestDoc struct {
	Code               string `yaml:"code"`
	AnnualInterestRate string `yaml:"annual_interest_rate"`
	InterestMethod     string `yaml:"interest_method"`
	PenaltyRate        string `yaml:"penalty_rate"`
	PenaltyMin         string `yaml:"penalty_min"`
	PenaltyMax         string `yaml:"penalty_max"`
	PenaltyBase        string `yaml:"penalty_base"`
	VdaInterestWaived  bool   `yaml:"vda_interest_waived"`
	VdaPenaltiesWaived bool   `yaml:"vda_penalties_waived"`
	VdaLookbackMonths  *int   `yaml:"vda_lookback_months"`
}

// LoadFromFile reads and validates an analysis file.
func LoadFromFile(filename string) (*Analysis, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read %s", filename)
	}
	return Parse(data)
}

// Parse builds an Analysis from raw YAML.
func Parse(data []byte) (*Analysis, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "config: parse YAML")
	}
	return buildAnalysis(&doc)
}

func buildAnalysis(doc *document) (*Analysis, error) {
	if doc.CalculationDate == "" {
		return nil, eris.New("config: calculation_date is required")
	}
	calcDate, err := time.Parse(dateLayout, doc.CalculationDate)
	if err != nil {
		return nil, eris.Wrap(err, "config: calculation_date")
	}

	analysis := &Analysis{
		CalculationDate: calcDate,
		Jurisdictions:   map[string]domain.JurisdictionConfig{},
		InterestPenalty: map[string]domain.InterestPenaltyConfig{},
	}

	if doc.VdaFilingDate != "" {
		d, err := time.Parse(dateLayout, doc.VdaFilingDate)
		if err != nil {
			return nil, eris.Wrap(err, "config: vda_filing_date")
		}
		analysis.VdaFilingDate = &d
	}

	if len(doc.Transactions) == 0 {
		return nil, eris.New("config: no transactions provided")
	}
	for i, row := range doc.Transactions {
		tx, err := buildTransaction(row)
		if err != nil {
			return nil, eris.Wrapf(err, "config: transaction %d", i)
		}
		analysis.Transactions = append(analysis.Transactions, tx)
	}

	if len(doc.Jurisdictions) == 0 {
		return nil, eris.New("config: no jurisdictions provided")
	}
	for i, row := range doc.Jurisdictions {
		cfg, err := buildJurisdiction(row, doc.FiscalYearEnd)
		if err != nil {
			return nil, eris.Wrapf(err, "config: jurisdiction %d (%s)", i, row.Code)
		}
		analysis.Jurisdictions[cfg.Jurisdiction] = cfg
	}

	for i, row := range doc.InterestPenalty {
		code, cfg, err := buildInterestPenalty(row)
		if err != nil {
			return nil, eris.Wrapf(err, "config: interest_penalty %d (%s)", i, row.Code)
		}
		analysis.InterestPenalty[code] = cfg
	}

	return analysis, nil
}

func buildTransaction(row transactionDoc) (domain.TransactionRecord, error) {
	var tx domain.TransactionRecord

	if row.Jurisdiction == "" {
		return tx, eris.New("jurisdiction is required")
	}
	date, err := time.Parse(dateLayout, row.Date)
	if err != nil {
		return tx, eris.Wrap(err, "date")
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return tx, eris.Wrap(err, "amount")
	}
	if amount.IsNegative() {
		return tx, eris.Errorf("amount %s cannot be negative", row.Amount)
	}
	channel := domain.SalesChannel(row.Channel)
	if !channel.Valid() {
		return tx, eris.Errorf("unknown channel %q", row.Channel)
	}

	id := uuid.New()
	if row.ID != "" {
		id, err = uuid.Parse(row.ID)
		if err != nil {
			return tx, eris.Wrap(err, "id")
		}
	}

	return domain.TransactionRecord{
		ID:           id,
		Date:         date,
		Jurisdiction: row.Jurisdiction,
		Amount:       amount,
		Channel:      channel,
	}, nil
}

func buildJurisdiction(row jurisdictionDoc, fiscalYearEnd *fiscalYearEndDoc) (domain.JurisdictionConfig, error) {
	var cfg domain.JurisdictionConfig

	if row.Code == "" {
		return cfg, eris.New("code is required")
	}
	cfg.Jurisdiction = row.Code

	if row.ThresholdAmount != "" {
		amount, err := decimal.NewFromString(row.ThresholdAmount)
		if err != nil {
			return cfg, eris.Wrap(err, "threshold_amount")
		}
		cfg.ThresholdAmount = &amount
	}
	cfg.ThresholdCount = row.ThresholdCount
	if cfg.ThresholdAmount == nil && cfg.ThresholdCount == nil {
		return cfg, eris.New("at least one of threshold_amount or threshold_count is required")
	}

	cfg.ThresholdOperator = domain.ThresholdOperator(row.ThresholdOperator)
	if row.ThresholdOperator == "" {
		cfg.ThresholdOperator = domain.OperatorOr
	}
	if !cfg.ThresholdOperator.Valid() {
		return cfg, eris.Errorf("unknown threshold_operator %q", row.ThresholdOperator)
	}

	policy, err := buildPolicy(row.LookbackPolicy, fiscalYearEnd)
	if err != nil {
		return cfg, eris.Wrap(err, "lookback_policy")
	}
	cfg.LookbackPolicy = policy

	cfg.TaxRate, err = decimal.NewFromString(row.TaxRate)
	if err != nil {
		return cfg, eris.Wrap(err, "tax_rate")
	}
	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return cfg, eris.Errorf("tax_rate must be between 0 and 1, got %s", row.TaxRate)
	}

	if row.MarketplaceLawEffectiveDate != "" {
		date, err := time.Parse(dateLayout, row.MarketplaceLawEffectiveDate)
		if err != nil {
			return cfg, eris.Wrap(err, "marketplace_law_effective_date")
		}
		cfg.MarketplaceLawEffectiveDate = &date
	}

	return cfg, nil
}

func buildPolicy(doc policyDoc, fiscalYearEnd *fiscalYearEndDoc) (domain.LookbackPolicy, error) {
	switch doc.Type {
	case "previous_calendar_year":
		return domain.PreviousCalendarYear{}, nil
	case "current_or_previous_calendar_year":
		return domain.CurrentOrPreviousCalendarYear{}, nil
	case "rolling_window":
		if doc.Days <= 0 {
			return nil, eris.Errorf("rolling_window requires positive days, got %d", doc.Days)
		}
		return domain.RollingWindow{Days: doc.Days}, nil
	case "quarter_window":
		if doc.Quarters <= 0 {
			return nil, eris.Errorf("quarter_window requires positive quarters, got %d", doc.Quarters)
		}
		return domain.QuarterWindow{Quarters: doc.Quarters}, nil
	case "fixed_annual_window":
		month, day := doc.Month, doc.Day
		if month == 0 && day == 0 && fiscalYearEnd != nil {
			// Client-level fiscal year end configured per analysis.
			month, day = fiscalYearEnd.Month, fiscalYearEnd.Day
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return nil, eris.Errorf("fixed_annual_window requires a valid month/day, got %02d-%02d", month, day)
		}
		return domain.FixedAnnualWindow{Month: time.Month(month), Day: day}, nil
	case "":
		return nil, eris.New("type is required")
	default:
		return nil, eris.Errorf("unknown policy type %q", doc.Type)
	}
}

func buildInterestPenalty(row interestDoc) (string, domain.InterestPenaltyConfig, error) {
	cfg := domain.DefaultInterestPenaltyConfig()

	if row.Code == "" {
		return "", cfg, eris.New("code is required")
	}

	if row.AnnualInterestRate != "" {
		rate, err := decimal.NewFromString(row.AnnualInterestRate)
		if err != nil {
			return "", cfg, eris.Wrap(err, "annual_interest_rate")
		}
		if rate.IsNegative() {
			return "", cfg, eris.New("annual_interest_rate cannot be negative")
		}
		cfg.AnnualInterestRate = domain.NewAnnualRate(rate)
	}

	if row.InterestMethod != "" {
		cfg.InterestMethod = domain.InterestMethod(row.InterestMethod)
		if !cfg.InterestMethod.Valid() {
			return "", cfg, eris.Errorf("unknown interest_method %q", row.InterestMethod)
		}
	}

	if row.PenaltyRate != "" {
		rate, err := decimal.NewFromString(row.PenaltyRate)
		if err != nil {
			return "", cfg, eris.Wrap(err, "penalty_rate")
		}
		if rate.IsNegative() {
			return "", cfg, eris.New("penalty_rate cannot be negative")
		}
		cfg.PenaltyRate = rate
	}

	if row.PenaltyMin != "" {
		floor, err := decimal.NewFromString(row.PenaltyMin)
		if err != nil {
			return "", cfg, eris.Wrap(err, "penalty_min")
		}
		cfg.PenaltyMin = &floor
	}
	if row.PenaltyMax != "" {
		ceiling, err := decimal.NewFromString(row.PenaltyMax)
		if err != nil {
			return "", cfg, eris.Wrap(err, "penalty_max")
		}
		cfg.PenaltyMax = &ceiling
	}
	if cfg.PenaltyMin != nil && cfg.PenaltyMax != nil && cfg.PenaltyMin.GreaterThan(*cfg.PenaltyMax) {
		return "", cfg, eris.New("penalty_min cannot exceed penalty_max")
	}

	if row.PenaltyBase != "" {
		cfg.PenaltyBase = domain.PenaltyBase(row.PenaltyBase)
		if !cfg.PenaltyBase.Valid() {
			return "", cfg, eris.Errorf("unknown penalty_base %q", row.PenaltyBase)
		}
	}

	cfg.VdaInterestWaived = row.VdaInterestWaived
	cfg.VdaPenaltiesWaived = row.VdaPenaltiesWaived
	if row.VdaLookbackMonths != nil {
		if *row.VdaLookbackMonths <= 0 {
			return "", cfg, eris.Errorf("vda_lookback_months must be positive, got %d", *row.VdaLookbackMonths)
		}
		cfg.VdaLookbackMonths = *row.VdaLookbackMonths
	}

	return row.Code, cfg, nil
}
