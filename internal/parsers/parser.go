package parsers

import (
	"fmt"

	"github.com/ethanolivertroy/pacprune/internal/models"
)

// Parser is the interface for package filename parsers
type Parser interface {
	// CanParse returns true if this parser recognizes the filename's shape
	CanParse(filename string) bool

	// Parse extracts a package identity from the file path
	Parse(path string) (models.Package, error)
}

// GetAllParsers returns all available parsers
func GetAllParsers() []Parser {
	return []Parser{
		&ArchPackageParser{},
	}
}

// ParseError reports a file that does not follow the package naming
// convention. It is never fatal: the file is ignored.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
