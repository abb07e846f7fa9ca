package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/ethanolivertroy/pacprune/internal/cache"
	"github.com/ethanolivertroy/pacprune/internal/models"
	"github.com/ethanolivertroy/pacprune/internal/prompt"
	"github.com/ethanolivertroy/pacprune/internal/remover"
	"github.com/ethanolivertroy/pacprune/internal/reporter"
	"github.com/ethanolivertroy/pacprune/internal/scanner"
)

// ErrNotDirectory is returned when the positional argument is not a directory
var ErrNotDirectory = errors.New("not a directory")

var (
	flagOutput  string
	flagFormat  string
	flagConfirm string
	flagDryRun  bool
	flagExclude []string
	flagVerify  bool
	flagNoCache bool
	flagClear   bool
	flagVerbose bool
	flagNoColor bool
)

// verifyCacheDir locates the archive verification markers
var verifyCacheDir = func() (string, error) {
	return cache.DefaultDir("pacprune")
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pacprune [dir]",
	Short: "Remove package archives superseded by a newer version",
	Long: `pacprune inspects a directory of package archives named
<name>-<pkgver>-<pkgrel>-<arch>.pkg.tar.<compression>, keeps the newest
version of every package and removes the older ones, together with their
detached .sig signatures.

Versions that cannot be ordered safely are never removed automatically: they
are kept, or offered to the operator depending on the confirm level.

Confirm levels:
  none         never ask; ambiguous versions are kept, removal proceeds
  removal      ask once before removing anything (default)
  ambiguities  also ask which version to keep when versions are ambiguous
  everything   ask about every package with more than one version

Examples:
  # Clean the pacman cache
  pacprune /var/cache/pacman/pkg

  # Show what would be removed, as JSON
  pacprune --dry-run --format json /srv/mirror/os/x86_64

  # Never touch kernels, check archives before trusting them
  pacprune --exclude 'linux-*' --verify-archives`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPrune,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.Error.Sprintf("Error: %v", err))
		if errors.Is(err, ErrNotDirectory) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Report file path (default: stdout)")
	rootCmd.Flags().StringVarP(&flagFormat, "format", "f", "terminal", "Report format: "+strings.Join(reporter.Formats, ", "))
	rootCmd.Flags().StringVarP(&flagConfirm, "confirm-level", "c", models.ConfirmRemoval.String(), "How much to ask: none, removal, ambiguities, everything")
	rootCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "Report only, never remove anything")
	rootCmd.Flags().StringArrayVarP(&flagExclude, "exclude", "e", nil, "gitignore-style pattern of files to leave untouched (repeatable)")
	rootCmd.Flags().BoolVar(&flagVerify, "verify-archives", false, "Ignore packages whose archive cannot be read")
	rootCmd.Flags().BoolVar(&flagNoCache, "no-verify-cache", false, "Read every archive again, even those verified on earlier runs")
	rootCmd.Flags().BoolVar(&flagClear, "clear-verify-cache", false, "Forget every archive verified on earlier runs before scanning")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every decision")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

func runPrune(cmd *cobra.Command, args []string) error {
	level, err := models.ParseConfirmLevel(flagConfirm)
	if err != nil {
		return err
	}

	dir, err := targetDir(cmd, args)
	if err != nil {
		return err
	}

	config := models.DefaultConfig()
	config.Dir = dir
	config.ConfirmLevel = level
	config.DryRun = flagDryRun
	config.Exclude = flagExclude
	config.VerifyArchives = flagVerify
	config.OutputFormat = flagFormat
	config.OutputFile = flagOutput
	config.NoColor = flagNoColor
	config.Verbose = flagVerbose

	if config.NoColor {
		color.Disable()
	}
	logger := newLogger(cmd.ErrOrStderr(), config.Verbose)

	if flagClear {
		if err := clearVerifyCache(cmd); err != nil {
			return err
		}
	}

	if config.VerifyArchives && !flagNoCache {
		if dir, err := verifyCacheDir(); err == nil {
			config.CacheDir = dir
		} else {
			logger.Warn("verification cache disabled", "error", err)
		}
	}

	// Operator interaction shares stdout with the terminal report only
	ui := cmd.OutOrStdout()
	if config.OutputFormat != "terminal" && config.OutputFile == "" {
		ui = cmd.ErrOrStderr()
	}
	term := prompt.NewTerminal(cmd.InOrStdin(), ui)
	if level.AtLeastRemoval() && !config.DryRun && !term.Interactive() {
		logger.Warn("standard input is not a terminal, answers to confirmation prompts are read from it")
	}

	// Create scanner
	s, err := scanner.New(config, term, ui, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scanner: %w", err)
	}

	// Run scan
	outcome, err := s.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	// Generate report
	rep := reporter.Get(config.OutputFormat)
	output, err := rep.Report(outcome)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	// Write output
	if config.OutputFile != "" {
		if err := os.WriteFile(config.OutputFile, output, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", config.OutputFile)
	} else {
		cmd.OutOrStdout().Write(output)
	}

	if config.DryRun || !outcome.HasRemovals() {
		return nil
	}

	ok, err := remover.Confirm(term, ui, config.ConfirmLevel, len(outcome.Removed))
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		fmt.Fprintln(ui, "\n------------")
		fmt.Fprintln(ui, "Aborting: not removing any file.")
		return nil
	}

	if err := remover.New(ui).Remove(cmd.Context(), outcome.Removed); err != nil {
		return err
	}

	// Nobody confirmed anything, so repeat what was left alone
	if !config.ConfirmLevel.AtLeastRemoval() {
		fmt.Fprint(ui, reporter.FormatIgnored(outcome.Ignored))
	}
	return nil
}

func clearVerifyCache(cmd *cobra.Command) error {
	dir, err := verifyCacheDir()
	if err != nil {
		return fmt.Errorf("failed to locate verification cache: %w", err)
	}
	c, err := cache.New(dir, 0)
	if err != nil {
		return fmt.Errorf("failed to open verification cache: %w", err)
	}
	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear verification cache: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Cleared verification cache %s\n", dir)
	return nil
}

// targetDir returns the directory argument, or the working directory
func targetDir(cmd *cobra.Command, args []string) (string, error) {
	var dir string
	if len(args) > 0 {
		dir = args[0]
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "No folder was provided, using current working directory...")
		dir = wd
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("provided argument `%s`: %w", dir, ErrNotDirectory)
	}
	return dir, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
