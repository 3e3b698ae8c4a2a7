package profile

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Prompter collects one field value per call. The orchestrator injects a
// terminal implementation; tests inject a canned one.
type Prompter interface {
	Ask(label string) (string, error)
}

// TerminalPrompter reads answers line by line from an input stream.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalPrompter prompts on stdout and reads from stdin.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (t *TerminalPrompter) Ask(label string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", label)
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return line, nil
}
