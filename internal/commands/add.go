package commands

import (
	"context"
	"flag"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	flags taskFlags
}

// SetDescription sets the description flag (for testing).
func (c *AddCmd) SetDescription(d string) {
	c.flags.description.Set(d)
}

// SetPriority sets the priority flag (for testing).
func (c *AddCmd) SetPriority(p string) {
	c.flags.priority.Set(p)
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskboard add [--description <text>] [--priority <low|medium|high>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags.register(fs, false)
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	input, err := c.flags.input(args).Normalize()
	if err != nil {
		return printError(errOut, err)
	}

	m, code := mountTaskList(ctx, cfg, svc, out, errOut)
	if code != exitcode.Success {
		return code
	}

	// Create notifies on failure; only the exit code is left to report.
	task, err := m.Create(ctx, input)
	if err != nil {
		return exitcode.FromError(err)
	}

	if !cfg.Quiet {
		output.NewPrinter(out).Task(task)
	}
	return exitcode.Success
}
