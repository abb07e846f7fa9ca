// Package remover asks for the final go-ahead and deletes the superseded files.
package remover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/ethanolivertroy/pacprune/internal/models"
	"github.com/ethanolivertroy/pacprune/internal/prompt"
)

// ConfirmAnswer is the only line that allows removal
const ConfirmAnswer = "y\n"

const confirmQuestion = "Are you agreeing to these removals ? Type `y` and press enter if you do."

// Confirm asks the operator whether count staged removals may proceed.
// Levels below ConfirmRemoval, and an empty removal list, need no answer.
// Anything but exactly "y" and a line terminator declines, including end of
// input; other read failures are returned.
func Confirm(p prompt.Prompter, out io.Writer, level models.ConfirmLevel, count int) (bool, error) {
	if count == 0 || !level.AtLeastRemoval() {
		return true, nil
	}

	fmt.Fprintln(out, "\n------------")
	line, err := p.ReadLine(confirmQuestion)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return line == ConfirmAnswer, nil
}

// Remover deletes files in order and stops at the first failure
type Remover struct {
	out      io.Writer
	progress bool
	remove   func(string) error
}

// New creates a Remover reporting on out. A progress bar replaces the
// per-file listing when out is a terminal.
func New(out io.Writer) *Remover {
	progress := false
	if f, ok := out.(*os.File); ok {
		progress = term.IsTerminal(int(f.Fd()))
	}
	return &Remover{out: out, progress: progress, remove: os.Remove}
}

// Remove deletes every path. Files deleted before a failure stay deleted;
// files after it are left in place.
func (r *Remover) Remove(ctx context.Context, paths []string) error {
	fmt.Fprintln(r.out, "\n------------")
	fmt.Fprintf(r.out, "Actually removing %d files...\n\n", len(paths))

	var bar *progressbar.ProgressBar
	if r.progress {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription("removing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if bar != nil {
			bar.Describe(filepath.Base(path))
		} else {
			fmt.Fprintln(r.out, filepath.Base(path))
		}
		if err := r.remove(path); err != nil {
			if bar != nil {
				_ = bar.Exit()
			}
			fmt.Fprintln(r.out, color.Error.Sprintf("failed to remove %s", path))
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return nil
}
