// Package prompt reads interactive answers and secrets from the user.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// ErrCancelled is returned when input ends or the user interrupts.
var ErrCancelled = errors.New("input cancelled")

// Prompter asks questions.
type Prompter interface {
	// Line reads one visible line.
	Line(prompt string) (string, error)

	// Secret reads one line without echo when the input is a terminal.
	Secret(prompt string) (string, error)

	Close() error
}

// New returns a readline-backed prompter when in is a terminal and a plain
// line reader otherwise.
func New(in io.Reader, out io.Writer) (Prompter, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return newTerminal(f, out)
	}
	return NewLines(in, out), nil
}

// Terminal prompts through readline.
type Terminal struct {
	rl *readline.Instance
}

func newTerminal(in *os.File, out io.Writer) (*Terminal, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdin:                  in,
		Stdout:                 out,
		InterruptPrompt:        "^C",
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Terminal{rl: rl}, nil
}

// Line reads a visible line.
func (t *Terminal) Line(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	if err != nil {
		return "", mapReadlineErr(err)
	}
	return strings.TrimSpace(line), nil
}

// Secret reads a line with echo disabled.
func (t *Terminal) Secret(prompt string) (string, error) {
	b, err := t.rl.ReadPassword(prompt)
	if err != nil {
		return "", mapReadlineErr(err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Close releases the terminal.
func (t *Terminal) Close() error {
	return t.rl.Close()
}

func mapReadlineErr(err error) error {
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return ErrCancelled
	}
	return err
}

// Lines prompts by reading newline-terminated answers from any reader.
type Lines struct {
	r   *bufio.Reader
	out io.Writer
}

// NewLines returns a line prompter. Prompts are written to out.
func NewLines(in io.Reader, out io.Writer) *Lines {
	return &Lines{r: bufio.NewReader(in), out: out}
}

// Line reads the next line.
func (l *Lines) Line(prompt string) (string, error) {
	fmt.Fprint(l.out, prompt)
	line, err := l.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Secret reads the next line. Non-terminal input has no echo to suppress.
func (l *Lines) Secret(prompt string) (string, error) {
	s, err := l.Line(prompt)
	if err == nil {
		fmt.Fprintln(l.out)
	}
	return s, err
}

// Close is a no-op.
func (l *Lines) Close() error { return nil }

var (
	_ Prompter = (*Terminal)(nil)
	_ Prompter = (*Lines)(nil)
)
