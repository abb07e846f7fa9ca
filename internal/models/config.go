package models

import (
	"fmt"
	"strings"
)

// ConfirmLevel controls how much the operator is asked before anything is
// decided or deleted. Levels are ordered: each one asks at least as much as
// the one before it.
type ConfirmLevel int

const (
	// ConfirmNone never prompts: ambiguous groups are kept, removals proceed.
	ConfirmNone ConfirmLevel = iota
	// ConfirmRemoval asks once before deleting anything.
	ConfirmRemoval
	// ConfirmAmbiguities also asks which version to keep for ambiguous groups.
	ConfirmAmbiguities
	// ConfirmEverything asks about every package with more than one version.
	ConfirmEverything
)

var confirmLevelNames = []string{"none", "removal", "ambiguities", "everything"}

// String returns the flag spelling of the level
func (l ConfirmLevel) String() string {
	if l < ConfirmNone || l > ConfirmEverything {
		return fmt.Sprintf("ConfirmLevel(%d)", int(l))
	}
	return confirmLevelNames[l]
}

// ParseConfirmLevel parses a flag value such as "removal"
func ParseConfirmLevel(s string) (ConfirmLevel, error) {
	for i, name := range confirmLevelNames {
		if strings.EqualFold(s, name) {
			return ConfirmLevel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown confirm level %q (want one of %s)", s, strings.Join(confirmLevelNames, ", "))
}

// AtLeastRemoval returns true if deletions need an explicit "y"
func (l ConfirmLevel) AtLeastRemoval() bool { return l >= ConfirmRemoval }

// AtLeastAmbiguities returns true if ambiguous groups are resolved interactively
func (l ConfirmLevel) AtLeastAmbiguities() bool { return l >= ConfirmAmbiguities }

// Everything returns true if every older version goes through manual review
func (l ConfirmLevel) Everything() bool { return l >= ConfirmEverything }

// Config holds configuration for a pruning run
type Config struct {
	// Directory to scan (not recursive)
	Dir string

	// Behavior settings
	ConfirmLevel   ConfirmLevel
	DryRun         bool     // Resolve and report, never delete
	Exclude        []string // gitignore-style patterns left untouched
	VerifyArchives bool     // Read the first tar header of every package
	CacheDir       string   // Markers for verified archives; empty disables

	// Output settings
	OutputFormat string // "terminal", "json", "toml"
	OutputFile   string // Optional report file path
	NoColor      bool
	Verbose      bool
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Dir:          ".",
		ConfirmLevel: ConfirmRemoval,
		OutputFormat: "terminal",
	}
}
