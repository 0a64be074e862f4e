package output

import (
	"encoding/json"

	"github.com/nexcalc/nexcalc/internal/domain"
)

// JSONFormatter emits the full report for downstream storage or rendering.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(report *domain.AnalysisReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
