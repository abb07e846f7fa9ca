package reporter

import "github.com/ethanolivertroy/pacprune/internal/models"

// Reporter is the interface for output formatters
type Reporter interface {
	// Report generates output for the given outcome
	Report(outcome *models.Outcome) ([]byte, error)
}

// Formats lists the accepted --format values
var Formats = []string{"terminal", "json", "toml"}

// Get returns a reporter for the specified format
func Get(format string) Reporter {
	switch format {
	case "json":
		return &JSONReporter{}
	case "toml":
		return &TOMLReporter{}
	default:
		return &TerminalReporter{}
	}
}

// document is the machine-readable shape shared by the JSON and TOML reporters
type document struct {
	Summary   summary       `json:"summary" toml:"summary"`
	Kept      []string      `json:"kept" toml:"kept"`
	Removed   []string      `json:"removed" toml:"removed"`
	Ignored   []ignoredFile `json:"ignored" toml:"ignored"`
	Anomalies []anomaly     `json:"anomalies,omitempty" toml:"anomalies,omitempty"`
}

type summary struct {
	Dir       string `json:"dir" toml:"dir"`
	Kept      int    `json:"kept" toml:"kept"`
	Removed   int    `json:"removed" toml:"removed"`
	Ignored   int    `json:"ignored" toml:"ignored"`
	Anomalies int    `json:"anomalies" toml:"anomalies"`
}

type ignoredFile struct {
	Path   string `json:"path" toml:"path"`
	Reason string `json:"reason" toml:"reason"`
}

type anomaly struct {
	Name      string `json:"name" toml:"name"`
	Best      string `json:"best" toml:"best"`
	Alternate string `json:"alternate" toml:"alternate"`
	Path      string `json:"path" toml:"path"`
}

func newDocument(o *models.Outcome) document {
	doc := document{
		Summary: summary{
			Dir:       o.Dir,
			Kept:      len(o.Kept),
			Removed:   len(o.Removed),
			Ignored:   len(o.Ignored),
			Anomalies: len(o.Anomalies),
		},
		Kept:    nonNil(o.Kept),
		Removed: nonNil(o.Removed),
		Ignored: make([]ignoredFile, 0, len(o.Ignored)),
	}
	for _, f := range o.Ignored {
		doc.Ignored = append(doc.Ignored, ignoredFile{Path: f.Path, Reason: f.Reason})
	}
	for _, a := range o.Anomalies {
		doc.Anomalies = append(doc.Anomalies, anomaly{Name: a.Name, Best: a.Best, Alternate: a.Alternate, Path: a.Path})
	}
	return doc
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
