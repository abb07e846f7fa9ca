package parsers

import (
	"path/filepath"
	"strings"

	"github.com/ethanolivertroy/pacprune/internal/models"
	"github.com/ethanolivertroy/pacprune/internal/version"
)

// packageSuffix precedes the compression token
const packageSuffix = ".pkg.tar"

// ArchPackageParser parses <name>-<pkgver>-<pkgrel>-<arch>.pkg.tar.<compression>
type ArchPackageParser struct{}

// CanParse returns true for names carrying the package archive suffix
func (p *ArchPackageParser) CanParse(filename string) bool {
	_, _, ok := splitSuffix(filename)
	return ok
}

// Parse extracts name, version and architecture from the file name.
// The name may contain hyphens, so fields are taken from the right.
func (p *ArchPackageParser) Parse(path string) (models.Package, error) {
	filename := filepath.Base(path)

	stem, compression, ok := splitSuffix(filename)
	if !ok {
		return models.Package{}, &ParseError{Path: path, Reason: "not a " + packageSuffix + ".<compression> archive"}
	}

	fields := strings.Split(stem, "-")
	if len(fields) < 4 {
		return models.Package{}, &ParseError{Path: path, Reason: "expected <name>-<pkgver>-<pkgrel>-<arch>"}
	}
	n := len(fields)
	arch, pkgrel, pkgver := fields[n-1], fields[n-2], fields[n-3]
	name := strings.Join(fields[:n-3], "-")
	if name == "" || pkgver == "" || pkgrel == "" || arch == "" {
		return models.Package{}, &ParseError{Path: path, Reason: "empty name, version, release or architecture field"}
	}

	v, err := version.Parse(pkgver, pkgrel)
	if err != nil {
		return models.Package{}, &ParseError{Path: path, Reason: "unparseable version", Err: err}
	}

	return models.Package{
		Path:          path,
		Name:          name,
		VersionString: v.Raw,
		Version:       v,
		Arch:          arch,
		Compression:   compression,
	}, nil
}

// splitSuffix cuts ".pkg.tar.<compression>" off filename
func splitSuffix(filename string) (stem, compression string, ok bool) {
	i := strings.LastIndex(filename, packageSuffix+".")
	if i <= 0 {
		return "", "", false
	}
	compression = filename[i+len(packageSuffix)+1:]
	if compression == "" {
		return "", "", false
	}
	for _, c := range compression {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return "", "", false
		}
	}
	return filename[:i], compression, true
}
