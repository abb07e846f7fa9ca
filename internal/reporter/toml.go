package reporter

import (
	"bytes"

	"github.com/BurntSushi/toml"

	"github.com/ethanolivertroy/pacprune/internal/models"
)

// TOMLReporter outputs the outcome in TOML format
type TOMLReporter struct{}

// Report generates TOML output for the given outcome
func (r *TOMLReporter) Report(outcome *models.Outcome) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(newDocument(outcome)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
