package models

import (
	"time"

	"github.com/ethanolivertroy/pacprune/internal/version"
)

// Package represents one parsed package archive in the scanned directory
type Package struct {
	Path          string // Unique within a run
	Name          string // Logical package name, the group key
	VersionString string // "pkgver-pkgrel" as found in the filename
	Version       version.Version
	Arch          string
	Compression   string    // e.g. "xz", "zst"
	ModTime       time.Time // Display only
}

// String returns a human-readable representation
func (p Package) String() string {
	return p.Name + " " + p.VersionString
}
