package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Fields without a flag keep their
// current value.
type EditCmd struct {
	flags taskFlags
}

// SetTitle sets the title flag (for testing).
func (c *EditCmd) SetTitle(t string) {
	c.flags.title.Set(t)
}

// SetDescription sets the description flag (for testing).
func (c *EditCmd) SetDescription(d string) {
	c.flags.description.Set(d)
}

// SetPriority sets the priority flag (for testing).
func (c *EditCmd) SetPriority(p string) {
	c.flags.priority.Set(p)
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "taskboard edit [--title <text>] [--description <text>] [--priority <low|medium|high>] <id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags.register(fs, true)
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if c.flags.empty() {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --description or --priority)")
		return exitcode.UserError
	}

	m, code := mountTaskList(ctx, cfg, svc, out, errOut)
	if code != exitcode.Success {
		return code
	}

	task, err := editTask(ctx, m, id, &c.flags)
	if err != nil {
		return exitcode.FromError(err)
	}

	if !cfg.Quiet {
		output.NewPrinter(out).Task(task)
	}
	return exitcode.Success
}
