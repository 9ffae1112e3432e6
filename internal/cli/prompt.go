package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

var errAborted = errors.New("aborted")

// prompter asks the user questions during interactive commands.
type prompter interface {
	// Confirm asks a yes/no question; an empty answer picks def.
	Confirm(question string, def bool) (bool, error)
	// Line asks for one line of text, pre-filled with initial where the
	// terminal supports it.
	Line(question, initial string) (string, error)
	Close() error
}

// newPrompter uses a line editor when in is a terminal and plain line
// reading otherwise, so scripted input works.
func newPrompter(in io.Reader, out io.Writer) prompter {
	if in == nil {
		in = strings.NewReader("")
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)

		return &linerPrompter{state: state}
	}

	return &streamPrompter{in: bufio.NewReader(in), out: out}
}

type linerPrompter struct {
	state *liner.State
}

func (p *linerPrompter) Confirm(question string, def bool) (bool, error) {
	for {
		answer, err := p.state.Prompt(question + yesNoHint(def))
		if err != nil {
			return false, promptErr(err)
		}

		if ok, valid := parseYesNo(answer, def); valid {
			return ok, nil
		}
	}
}

func (p *linerPrompter) Line(question, initial string) (string, error) {
	answer, err := p.state.PromptWithSuggestion(question+": ", initial, -1)
	if err != nil {
		return "", promptErr(err)
	}

	return strings.TrimSpace(answer), nil
}

func (p *linerPrompter) Close() error {
	return p.state.Close()
}

func promptErr(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return errAborted
	}

	return fmt.Errorf("reading input: %w", err)
}

type streamPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *streamPrompter) Confirm(question string, def bool) (bool, error) {
	for {
		answer, err := p.readLine(question + yesNoHint(def))
		if err != nil {
			return false, err
		}

		if ok, valid := parseYesNo(answer, def); valid {
			return ok, nil
		}
	}
}

func (p *streamPrompter) Line(question, initial string) (string, error) {
	prompt := question + ": "
	if initial != "" {
		prompt = fmt.Sprintf("%s [%s]: ", question, initial)
	}

	answer, err := p.readLine(prompt)
	if err != nil {
		return "", err
	}

	if answer == "" {
		return initial, nil
	}

	return answer, nil
}

func (p *streamPrompter) Close() error { return nil }

func (p *streamPrompter) readLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.out, prompt)

	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}

		if errors.Is(err, io.EOF) {
			return "", errAborted
		}

		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func yesNoHint(def bool) string {
	if def {
		return " [Y/n] "
	}

	return " [y/N] "
}

func parseYesNo(answer string, def bool) (ok bool, valid bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}
