// Package prompt implements the workflow gates on the terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/gemscreen/internal/ports/secondary"
)

// TerminalPrompter asks the operator yes/no questions on the console.
// Any answer other than an explicit yes quits the gate.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

var _ secondary.GatePrompter = (*TerminalPrompter)(nil)

// New builds a prompter reading answers from in and printing to out.
func New(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

// Confirm prints the prompt and blocks for an answer. "y" and "yes"
// (case-insensitive) continue; everything else, including EOF, quits.
func (p *TerminalPrompter) Confirm(ctx context.Context, promptText string) (secondary.GateDecision, error) {
	if err := ctx.Err(); err != nil {
		return secondary.GateQuit, err
	}

	fmt.Fprintf(p.out, "%s %s ", color.YellowString(promptText), "[y/N]:")
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return secondary.GateQuit, fmt.Errorf("failed to read gate answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return secondary.GateContinue, nil
	default:
		return secondary.GateQuit, nil
	}
}

// AutoPrompter answers every gate without operator input. Used for
// unattended runs.
type AutoPrompter struct {
	Decision secondary.GateDecision
}

var _ secondary.GatePrompter = (*AutoPrompter)(nil)

// Confirm returns the configured decision.
func (p *AutoPrompter) Confirm(ctx context.Context, promptText string) (secondary.GateDecision, error) {
	return p.Decision, ctx.Err()
}
