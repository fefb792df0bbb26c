// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"context"
	"io"
	"os/exec"
)

// CommandExecutor abstracts the creation of commands
type CommandExecutor interface {
	Command(ctx context.Context, name string, args ...string) Commander
}

// Commander abstracts the exec.Cmd functionality
type Commander interface {
	// SetStderr routes the process stderr to w
	SetStderr(w io.Writer)

	// Run starts the command and waits for it to exit
	Run() error
}

// DefaultCommandExecutor uses the real exec.CommandContext
type DefaultCommandExecutor struct{}

func (DefaultCommandExecutor) Command(ctx context.Context, name string, args ...string) Commander {
	return &DefaultCommander{cmd: exec.CommandContext(ctx, name, args...)}
}

// DefaultCommander wraps a real exec.Cmd
type DefaultCommander struct {
	cmd *exec.Cmd
}

func (c *DefaultCommander) SetStderr(w io.Writer) { c.cmd.Stderr = w }

func (c *DefaultCommander) Run() error { return c.cmd.Run() }
