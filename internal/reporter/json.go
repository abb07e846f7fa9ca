package reporter

import (
	"encoding/json"

	"github.com/ethanolivertroy/pacprune/internal/models"
)

// JSONReporter outputs the outcome in JSON format
type JSONReporter struct{}

// Report generates JSON output for the given outcome
func (r *JSONReporter) Report(outcome *models.Outcome) ([]byte, error) {
	out, err := json.MarshalIndent(newDocument(outcome), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
