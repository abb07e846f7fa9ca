// Package mediator settles package groups the resolver could not order,
// according to the configured confirmation level.
package mediator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/gookit/color"

	"github.com/ethanolivertroy/pacprune/internal/models"
	"github.com/ethanolivertroy/pacprune/internal/prompt"
	"github.com/ethanolivertroy/pacprune/internal/resolver"
)

// IgnoreAnswer leaves every candidate of a group untouched
const IgnoreAnswer = "i"

// ReasonUnresolved is recorded for candidates of a group the operator ignored
const ReasonUnresolved = "ambiguity left unresolved by operator"

const indexQuestion = "> The index corresponding to the version to keep (default 0), or `i` to ignore :"

// Result is the settlement of every group
type Result struct {
	Kept    []models.Package
	Removed []models.Package
	Ignored []models.IgnoredFile
}

// Mediator decides ambiguous groups, asking the operator when the level says so
type Mediator struct {
	level    models.ConfirmLevel
	prompter prompt.Prompter
	out      io.Writer
	logger   *slog.Logger
}

// New creates a Mediator writing listings to out. A nil logger discards output.
func New(level models.ConfirmLevel, p prompt.Prompter, out io.Writer, logger *slog.Logger) *Mediator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if out == nil {
		out = io.Discard
	}
	return &Mediator{level: level, prompter: p, out: out, logger: logger}
}

// DisplayOrder returns the group's candidates sorted by version string,
// highest first, ties broken by path. This order is for presentation and
// indexing only; it may disagree with the version comparator.
func DisplayOrder(g resolver.Group) []models.Package {
	c := g.Candidates()
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].VersionString != c[j].VersionString {
			return c[i].VersionString > c[j].VersionString
		}
		return c[i].Path < c[j].Path
	})
	return c
}

// Resolve settles every group. Groups without ambiguities are kept as is.
// A failure to read the operator's answer aborts the whole resolution.
func (m *Mediator) Resolve(groups []resolver.Group) (Result, error) {
	var res Result
	headerShown := false

	for _, g := range groups {
		if !g.HasAmbiguities() {
			res.Kept = append(res.Kept, g.Best)
			continue
		}

		if !headerShown && m.level.AtLeastRemoval() {
			fmt.Fprintln(m.out, "\n------------")
			if m.level.Everything() {
				fmt.Fprintln(m.out, "Given the confirm level set to everything, asking about every package with several versions...")
			} else {
				fmt.Fprintln(m.out, "Handling ambiguous versions...")
			}
			fmt.Fprintln(m.out)
			headerShown = true
		}

		candidates := DisplayOrder(g)
		choice, err := m.decide(g.Name(), candidates)
		if err != nil {
			return Result{}, err
		}

		switch {
		case choice.ignore:
			for _, c := range candidates {
				res.Ignored = append(res.Ignored, models.IgnoredFile{Path: c.Path, Reason: ReasonUnresolved})
			}
			m.logger.Info("ambiguity ignored", "name", g.Name(), "candidates", len(candidates))
		case choice.keepAll:
			res.Kept = append(res.Kept, candidates...)
		default:
			for i, c := range candidates {
				if i == choice.keep {
					res.Kept = append(res.Kept, c)
				} else {
					res.Removed = append(res.Removed, c)
				}
			}
			m.logger.Debug("ambiguity resolved", "name", g.Name(), "kept", candidates[choice.keep].VersionString)
		}
	}
	return res, nil
}

// decision is the settlement of one group
type decision struct {
	keep    int // Index into the display order
	ignore  bool
	keepAll bool
}

func (m *Mediator) decide(name string, candidates []models.Package) (decision, error) {
	if !m.level.AtLeastRemoval() {
		m.logger.Debug("keeping all ambiguous versions", "name", name, "candidates", len(candidates))
		return decision{keepAll: true}, nil
	}

	kind := "ambiguities"
	if m.level.Everything() {
		kind = "versions"
	}
	fmt.Fprintf(m.out, "Package `%s` has %d %s :\n", name, len(candidates), kind)
	for i := len(candidates) - 1; i >= 0; i-- {
		c := candidates[i]
		if c.ModTime.IsZero() {
			fmt.Fprintf(m.out, "%2d.\t%s\n", i, c.VersionString)
		} else {
			fmt.Fprintf(m.out, "%2d.\t%s\t(modified %s)\n", i, c.VersionString, c.ModTime.Format("Mon, 02 Jan 2006 15:04:05 -0700"))
		}
	}

	if !m.level.AtLeastAmbiguities() {
		fmt.Fprintln(m.out, "> keeping all")
		return decision{keepAll: true}, nil
	}

	for {
		line, err := m.prompter.ReadLine(indexQuestion)
		if err != nil {
			if errors.Is(err, prompt.ErrInput) {
				return decision{}, err
			}
			return decision{}, fmt.Errorf("%w: %v", prompt.ErrInput, err)
		}
		answer := strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		switch answer {
		case "":
			return decision{keep: 0}, nil
		case IgnoreAnswer:
			return decision{ignore: true}, nil
		}

		n, err := strconv.Atoi(answer)
		if err != nil {
			fmt.Fprintln(m.out, color.Warn.Sprintf("Can't parse input `%s` into number: %v", answer, err))
			continue
		}
		if n < 0 || n >= len(candidates) {
			fmt.Fprintln(m.out, color.Warn.Sprintf("Number %d from `%s` is out of range, please provide a number between 0 and %d.", n, answer, len(candidates)-1))
			continue
		}
		return decision{keep: n}, nil
	}
}
