// Package prompt is the operator question-and-answer capability. The
// resolution code only sees the Prompter interface, so it runs unchanged
// against a terminal or a scripted list of answers.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// ErrInput indicates the operator's answers could not be read
var ErrInput = errors.New("cannot read from input to ask anything to the user")

// Prompter asks the operator one question and returns one line of answer.
type Prompter interface {
	// ReadLine prints prompt and returns the line read, line terminator
	// included when present. At end of input it returns the partial line
	// and io.EOF.
	ReadLine(prompt string) (string, error)
}

// Terminal reads answers from a stream, normally stdin
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // -1 when in is not a file
}

// NewTerminal creates a Terminal prompting on out and reading from in
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &Terminal{in: bufio.NewReader(in), out: out, fd: fd}
}

// Interactive returns true if answers come from a terminal
func (t *Terminal) Interactive() bool {
	return t.fd >= 0 && term.IsTerminal(t.fd)
}

// ReadLine prints prompt and reads one line
func (t *Terminal) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprintln(t.out, color.Info.Sprint(prompt))
	}
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return line, fmt.Errorf("%w: %v", ErrInput, err)
	}
	return line, err
}

// Scripted replays fixed answers. Each answer gets a "\n" appended unless it
// already ends the input (see Raw).
type Scripted struct {
	lines   []string
	Prompts []string // Every prompt asked, in order
}

// NewScripted creates a Prompter answering with lines, one per question
func NewScripted(lines ...string) *Scripted {
	s := &Scripted{}
	for _, l := range lines {
		s.lines = append(s.lines, l+"\n")
	}
	return s
}

// Raw appends an answer exactly as given, without a line terminator
func (s *Scripted) Raw(line string) *Scripted {
	s.lines = append(s.lines, line)
	return s
}

// ReadLine returns the next scripted answer, or io.EOF once they run out
func (s *Scripted) ReadLine(prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if len(line) == 0 || line[len(line)-1] != '\n' {
		return line, io.EOF
	}
	return line, nil
}
