// Package output renders an AnalysisReport for the CLI: a console summary,
// per-year CSV rows, or JSON for downstream tooling.
package output

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nexcalc/nexcalc/internal/domain"
)

// Formatter renders a report as bytes.
type Formatter interface {
	Name() string
	Format(report *domain.AnalysisReport) ([]byte, error)
}

var formatters = []Formatter{
	ConsoleFormatter{},
	CSVFormatter{},
	JSONFormatter{},
}

// GetFormatterByName returns the named formatter, or nil if unknown.
func GetFormatterByName(name string) Formatter {
	for _, f := range formatters {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// FormatCurrency renders a decimal as dollars and cents.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// ConsoleFormatter renders a readable per-jurisdiction summary.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(report *domain.AnalysisReport) ([]byte, error) {
	buf := &bytes.Buffer{}

	fmt.Fprintln(buf, "================================================================================")
	fmt.Fprintln(buf, "ECONOMIC NEXUS LIABILITY ANALYSIS")
	fmt.Fprintln(buf, "================================================================================")
	fmt.Fprintf(buf, "Run:              %s\n", report.RunID)
	fmt.Fprintf(buf, "Calculation date: %s\n", report.CalculationDate.Format("2006-01-02"))
	fmt.Fprintln(buf)

	for _, analysis := range report.Jurisdictions {
		fmt.Fprintf(buf, "JURISDICTION %s\n", analysis.Jurisdiction)
		fmt.Fprintln(buf, "--------------------------------------------------------------------------------")
		if analysis.Degraded {
			for _, note := range analysis.Notes {
				fmt.Fprintf(buf, "  !! %s\n", note)
			}
		}

		for _, year := range analysis.Years {
			if !year.HasNexus() {
				fmt.Fprintf(buf, "  %d: no nexus (total sales %s)\n", year.Year, FormatCurrency(year.TotalSales))
				continue
			}
			fmt.Fprintf(buf, "  %d: obligation from %s", year.Year, year.ObligationStartDate.Format("2006-01-02"))
			if year.NexusDate != nil {
				fmt.Fprintf(buf, " (nexus established %s)", year.NexusDate.Format("2006-01-02"))
			}
			fmt.Fprintln(buf)
			fmt.Fprintf(buf, "       taxable %s  tax %s  interest %s  penalties %s  total %s\n",
				FormatCurrency(year.TaxableSales), FormatCurrency(year.BaseTax),
				FormatCurrency(year.Interest), FormatCurrency(year.Penalties),
				FormatCurrency(year.TotalLiability))
		}

		fmt.Fprintf(buf, "  ALL YEARS: tax %s  interest %s  penalties %s  total %s  (%s)\n",
			FormatCurrency(analysis.AllYears.BaseTax), FormatCurrency(analysis.AllYears.Interest),
			FormatCurrency(analysis.AllYears.Penalties), FormatCurrency(analysis.AllYears.TotalLiability),
			analysis.AllYears.InterestMethod)

		if analysis.VdaSummary != nil {
			fmt.Fprintf(buf, "  VDA (from %s): total %s  savings %s\n",
				analysis.VdaSummary.EffectiveStart.Format("2006-01-02"),
				FormatCurrency(analysis.VdaSummary.TotalLiability),
				FormatCurrency(analysis.VdaSummary.Savings))
		}
		fmt.Fprintln(buf)
	}

	return buf.Bytes(), nil
}
