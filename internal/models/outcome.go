package models

import "sort"

// IgnoredFile is a file left untouched, with the reason it was set aside
type IgnoredFile struct {
	Path   string
	Reason string
}

// Anomaly records an alternate that outranked a newly promoted best version,
// which the comparator should not allow. Both stay ambiguous.
type Anomaly struct {
	Name      string
	Best      string // VersionString of the promoted package
	Alternate string // VersionString of the alternate that outranked it
	Path      string // Path of the alternate
}

// Outcome is the final partition of a scanned directory.
// A path appears in at most one of Kept, Removed and Ignored.
type Outcome struct {
	Dir       string
	Kept      []string
	Removed   []string
	Ignored   []IgnoredFile
	Anomalies []Anomaly
}

// HasRemovals returns true if any file is staged for removal
func (o *Outcome) HasRemovals() bool {
	return len(o.Removed) > 0
}

// IgnoredPaths returns the ignored paths without reasons
func (o *Outcome) IgnoredPaths() []string {
	paths := make([]string, 0, len(o.Ignored))
	for _, f := range o.Ignored {
		paths = append(paths, f.Path)
	}
	return paths
}

// Sort orders every list by path so output is stable across runs
func (o *Outcome) Sort() {
	sort.Strings(o.Kept)
	sort.Strings(o.Removed)
	sort.Slice(o.Ignored, func(i, j int) bool {
		return o.Ignored[i].Path < o.Ignored[j].Path
	})
}
