package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/nexcalc/nexcalc/internal/domain"
)

// CSVFormatter writes one row per jurisdiction-year.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(report *domain.AnalysisReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"Jurisdiction", "Year", "NexusDate", "ObligationStart", "TotalSales", "TaxableSales", "BaseTax", "Interest", "Penalties", "TotalLiability", "Degraded"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, analysis := range report.Jurisdictions {
		for _, year := range analysis.Years {
			nexusDate, obligationStart := "", ""
			if year.NexusDate != nil {
				nexusDate = year.NexusDate.Format("2006-01-02")
			}
			if year.ObligationStartDate != nil {
				obligationStart = year.ObligationStartDate.Format("2006-01-02")
			}
			row := []string{
				analysis.Jurisdiction,
				strconv.Itoa(year.Year),
				nexusDate,
				obligationStart,
				year.TotalSales.StringFixed(2),
				year.TaxableSales.StringFixed(2),
				year.BaseTax.StringFixed(2),
				year.Interest.StringFixed(2),
				year.Penalties.StringFixed(2),
				year.TotalLiability.StringFixed(2),
				strconv.FormatBool(analysis.Degraded),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
