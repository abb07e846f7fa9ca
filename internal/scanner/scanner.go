package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ethanolivertroy/pacprune/internal/cache"
	"github.com/ethanolivertroy/pacprune/internal/mediator"
	"github.com/ethanolivertroy/pacprune/internal/models"
	"github.com/ethanolivertroy/pacprune/internal/parsers"
	"github.com/ethanolivertroy/pacprune/internal/prompt"
	"github.com/ethanolivertroy/pacprune/internal/resolver"
)

// Reasons recorded for ignored files
const (
	ReasonExcluded        = "excluded by pattern"
	ReasonNotPackage      = "not a package archive"
	ReasonOrphanSignature = "signature without a kept package"
)

// Scanner orchestrates the pruning decision for one directory
type Scanner struct {
	config   *models.Config
	parsers  []parsers.Parser
	verifier *parsers.ArchiveVerifier
	verified *cache.Cache
	exclude  *ignore.GitIgnore
	prompter prompt.Prompter
	out      io.Writer
	logger   *slog.Logger
}

// New creates a new Scanner with the given configuration. Listings and
// questions for the operator go to out and answers come from p.
func New(config *models.Config, p prompt.Prompter, out io.Writer, logger *slog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Scanner{
		config:   config,
		parsers:  parsers.GetAllParsers(),
		prompter: p,
		out:      out,
		logger:   logger,
	}
	if config.VerifyArchives {
		s.verifier = &parsers.ArchiveVerifier{}
		if config.CacheDir != "" {
			c, err := cache.New(config.CacheDir, 0)
			if err != nil {
				return nil, fmt.Errorf("failed to open verification cache: %w", err)
			}
			s.verified = c
		}
	}
	if len(config.Exclude) > 0 {
		s.exclude = ignore.CompileIgnoreLines(config.Exclude...)
	}
	return s, nil
}

// Scan performs the full resolution and returns the partition of the directory
func (s *Scanner) Scan(ctx context.Context) (*models.Outcome, error) {
	outcome := &models.Outcome{Dir: s.config.Dir}

	// Step 1: Parse every regular file, setting signatures aside
	pkgs, sigs, ignored, err := s.discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.config.Dir, err)
	}
	outcome.Ignored = ignored

	// Step 2: Fold packages into one group per name
	r := resolver.New(s.config.ConfirmLevel.Everything(), s.logger)
	for _, p := range pkgs {
		if err := r.Add(p); err != nil {
			return nil, err
		}
	}
	for _, l := range r.Losers() {
		outcome.Removed = append(outcome.Removed, l.Path)
	}
	outcome.Anomalies = r.Anomalies()

	// Step 3: Settle the groups the fold could not order
	m := mediator.New(s.config.ConfirmLevel, s.prompter, s.out, s.logger)
	res, err := m.Resolve(r.Groups())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ambiguous versions: %w", err)
	}
	for _, p := range res.Kept {
		outcome.Kept = append(outcome.Kept, p.Path)
	}
	for _, p := range res.Removed {
		outcome.Removed = append(outcome.Removed, p.Path)
	}
	outcome.Ignored = append(outcome.Ignored, res.Ignored...)

	// Step 4: Signatures follow their package
	AssociateSignatures(outcome, sigs)

	outcome.Sort()
	return outcome, nil
}

// discover lists the directory and parses each regular file
func (s *Scanner) discover(ctx context.Context) (pkgs []models.Package, sigs []string, ignored []models.IgnoredFile, err error) {
	entries, err := os.ReadDir(s.config.Dir)
	if err != nil {
		return nil, nil, nil, err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, err
		}

		path := filepath.Join(s.config.Dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			// Dangling symlinks and races with other writers: not a regular file
			s.logger.Debug("skipping entry", "path", path, "error", err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		if s.exclude != nil && s.exclude.MatchesPath(entry.Name()) {
			ignored = append(ignored, s.ignore(path, ReasonExcluded))
			continue
		}

		if parsers.IsSignature(path) {
			sigs = append(sigs, path)
			continue
		}

		pkg, reason := s.parse(path)
		if reason != "" {
			ignored = append(ignored, s.ignore(path, reason))
			continue
		}
		pkg.ModTime = info.ModTime()

		if s.verifier != nil && s.verifier.Supports(pkg.Compression) {
			if err := s.verify(path, pkg.Compression, info); err != nil {
				ignored = append(ignored, s.ignore(path, "unreadable archive: "+err.Error()))
				continue
			}
		}

		pkgs = append(pkgs, pkg)
	}
	return pkgs, sigs, ignored, nil
}

// parse runs the first parser accepting the file; reason is empty on success
func (s *Scanner) parse(path string) (models.Package, string) {
	filename := filepath.Base(path)
	for _, parser := range s.parsers {
		if !parser.CanParse(filename) {
			continue
		}
		pkg, err := parser.Parse(path)
		if err != nil {
			var perr *parsers.ParseError
			if errors.As(err, &perr) {
				if perr.Err != nil {
					return models.Package{}, perr.Reason + ": " + perr.Err.Error()
				}
				return models.Package{}, perr.Reason
			}
			return models.Package{}, err.Error()
		}
		return pkg, ""
	}
	return models.Package{}, ReasonNotPackage
}

// verify reads the archive unless an unexpired marker says this exact file
// was already read successfully
func (s *Scanner) verify(path, compression string, info os.FileInfo) error {
	var key string
	if s.verified != nil {
		key = cache.Key(path, info.Size(), info.ModTime())
		if s.verified.Verified(key) {
			s.logger.Debug("archive verified earlier", "path", path)
			return nil
		}
	}
	if err := s.verifier.Verify(path, compression); err != nil {
		return err
	}
	if s.verified != nil {
		if err := s.verified.MarkVerified(key); err != nil {
			s.logger.Warn("failed to record verified archive", "path", path, "error", err)
		}
	}
	return nil
}

func (s *Scanner) ignore(path, reason string) models.IgnoredFile {
	s.logger.Info("ignoring file", "path", path, "reason", reason)
	return models.IgnoredFile{Path: path, Reason: reason}
}

// AssociateSignatures routes each detached signature after its package:
// removed with it, ignored when the package is not kept, otherwise left alone.
func AssociateSignatures(o *models.Outcome, sigs []string) {
	removed := make(map[string]struct{}, len(o.Removed))
	for _, p := range o.Removed {
		removed[p] = struct{}{}
	}
	kept := make(map[string]struct{}, len(o.Kept))
	for _, p := range o.Kept {
		kept[p] = struct{}{}
	}

	for _, sig := range sigs {
		base := parsers.SignatureBase(sig)
		if _, ok := removed[base]; ok {
			o.Removed = append(o.Removed, sig)
			continue
		}
		if _, ok := kept[base]; !ok {
			o.Ignored = append(o.Ignored, models.IgnoredFile{Path: sig, Reason: ReasonOrphanSignature})
		}
	}
}
