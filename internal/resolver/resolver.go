// Package resolver folds parsed packages into one group per logical name,
// keeping the highest version as the group's best candidate and setting aside
// every version that cannot be strictly ordered below it.
package resolver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/ethanolivertroy/pacprune/internal/models"
	"github.com/ethanolivertroy/pacprune/internal/version"
)

// ErrDuplicatePath indicates the same path was fed to the resolver twice.
// Distinct directory entries never produce it; it signals a caller bug.
var ErrDuplicatePath = errors.New("duplicate package path")

// compare is swapped out by tests that need an intransitive ordering
var compare = version.Compare

// Group is the candidate set for one package name.
// Best is never a member of Ambiguous.
type Group struct {
	Best      models.Package
	Ambiguous []models.Package
}

// NewGroup starts a group from the first package seen for its name
func NewGroup(p models.Package) Group {
	return Group{Best: p}
}

// Name returns the logical package name shared by every member
func (g Group) Name() string {
	return g.Best.Name
}

// HasAmbiguities returns true if the operator has to adjudicate this group
func (g Group) HasAmbiguities() bool {
	return len(g.Ambiguous) > 0
}

// Candidates returns Best followed by the ambiguous alternates
func (g Group) Candidates() []models.Package {
	out := make([]models.Package, 0, 1+len(g.Ambiguous))
	out = append(out, g.Best)
	return append(out, g.Ambiguous...)
}

func (g Group) contains(path string) bool {
	if g.Best.Path == path {
		return true
	}
	for _, p := range g.Ambiguous {
		if p.Path == path {
			return true
		}
	}
	return false
}

// Step is the result of inserting one package into a group
type Step struct {
	Group     Group
	Losers    []models.Package // Strictly older than the resulting best
	Anomalies []models.Anomaly
}

// Insert folds p into g and returns a new snapshot; g is not modified.
//
// When p outranks the current best, the old best and every old alternate are
// compared again against p, since being ambiguous against the old best says
// nothing about the new one. With reviewAll set, strictly older packages are
// kept as alternates instead of being reported as losers.
func Insert(g Group, p models.Package, reviewAll bool) (Step, error) {
	if g.contains(p.Path) {
		return Step{}, fmt.Errorf("%w: %s", ErrDuplicatePath, p.Path)
	}
	if p.Name != g.Name() {
		return Step{}, fmt.Errorf("package %s does not belong to group %s", p.Path, g.Name())
	}

	var step Step
	switch compare(p.Version, g.Best.Version) {
	case version.Greater:
		next := Group{Best: p}
		displaced := g.Candidates()
		for _, old := range displaced {
			switch compare(old.Version, p.Version) {
			case version.Less:
				if reviewAll {
					next.Ambiguous = append(next.Ambiguous, old)
				} else {
					step.Losers = append(step.Losers, old)
				}
			case version.Greater:
				next.Ambiguous = append(next.Ambiguous, old)
				step.Anomalies = append(step.Anomalies, models.Anomaly{
					Name:      p.Name,
					Best:      p.VersionString,
					Alternate: old.VersionString,
					Path:      old.Path,
				})
			default:
				next.Ambiguous = append(next.Ambiguous, old)
			}
		}
		step.Group = next
	case version.Less:
		if reviewAll {
			step.Group = g.with(p)
		} else {
			step.Group = g.clone()
			step.Losers = []models.Package{p}
		}
	default:
		step.Group = g.with(p)
	}
	return step, nil
}

// clone copies g so the caller's snapshot is never aliased
func (g Group) clone() Group {
	return Group{Best: g.Best, Ambiguous: append([]models.Package(nil), g.Ambiguous...)}
}

// with returns a copy of g with p added to the alternates
func (g Group) with(p models.Package) Group {
	next := g.clone()
	next.Ambiguous = append(next.Ambiguous, p)
	return next
}

// Resolver runs the fold over every parsed package of a directory
type Resolver struct {
	reviewAll bool
	logger    *slog.Logger

	groups    map[string]Group
	seen      map[string]struct{}
	losers    []models.Package
	anomalies []models.Anomaly
}

// New creates a Resolver. reviewAll sends every older version to the
// operator instead of marking it for removal. A nil logger discards output.
func New(reviewAll bool, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		reviewAll: reviewAll,
		logger:    logger,
		groups:    make(map[string]Group),
		seen:      make(map[string]struct{}),
	}
}

// Add folds one package into its group
func (r *Resolver) Add(p models.Package) error {
	if _, dup := r.seen[p.Path]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, p.Path)
	}
	r.seen[p.Path] = struct{}{}

	g, ok := r.groups[p.Name]
	if !ok {
		r.groups[p.Name] = NewGroup(p)
		return nil
	}

	step, err := Insert(g, p, r.reviewAll)
	if err != nil {
		return err
	}
	r.groups[p.Name] = step.Group

	for _, l := range step.Losers {
		r.logger.Debug("older version", "name", l.Name, "version", l.VersionString, "kept", step.Group.Best.VersionString)
	}
	for _, a := range step.Anomalies {
		r.logger.Warn("ambiguous package from an older version outranks the newer one",
			"name", a.Name, "best", a.Best, "alternate", a.Alternate)
	}
	r.losers = append(r.losers, step.Losers...)
	r.anomalies = append(r.anomalies, step.Anomalies...)
	return nil
}

// Groups returns every group sorted by name
func (r *Resolver) Groups() []Group {
	out := make([]Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Losers returns the packages already known to be superseded
func (r *Resolver) Losers() []models.Package {
	return r.losers
}

// Anomalies returns the order violations seen during the fold
func (r *Resolver) Anomalies() []models.Anomaly {
	return r.anomalies
}
