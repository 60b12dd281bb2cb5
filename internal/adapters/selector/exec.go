// Package selector shells out to the external cell-picking tool.
package selector

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/example/gemscreen/internal/core/well"
	"github.com/example/gemscreen/internal/ports/secondary"
)

// ExecSelector runs a configured command with the CSV path and crop size
// as arguments. The tool edits the process column in place and exits 0.
type ExecSelector struct {
	command string
	args    []string
}

var _ secondary.CellSelector = (*ExecSelector)(nil)

// New builds a selector around the given command line. Extra args are
// passed before the CSV path.
func New(command string, args ...string) *ExecSelector {
	return &ExecSelector{command: command, args: args}
}

// Select invokes the tool and waits for it to finish.
func (s *ExecSelector) Select(ctx context.Context, csvPath well.Path, cropSize int) error {
	args := append(append([]string{}, s.args...), string(csvPath), strconv.Itoa(cropSize))
	cmd := exec.CommandContext(ctx, s.command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cell selector %s failed: %w", s.command, err)
	}
	return nil
}

// PassThrough is a no-op selector: every measured cell keeps its current
// process flag. Used for unattended runs.
type PassThrough struct{}

var _ secondary.CellSelector = (*PassThrough)(nil)

// Select does nothing.
func (PassThrough) Select(ctx context.Context, csvPath well.Path, cropSize int) error {
	return ctx.Err()
}
