package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskboard help [command]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(out, helpText)
		return exitcode.Success
	}

	cmd, ok := DefaultRegistry.Find(args[0])
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	fmt.Fprintf(out, "%s\n\nUsage:\n  %s\n", cmd.Synopsis(), cmd.Usage())
	return exitcode.Success
}

const helpText = `Usage:
  taskboard                                          List tasks (first page)
  taskboard list [common flags] [--search <text>] [--page <n>] [--size <n>]
  taskboard add [common flags] [--description <text>] [--priority <p>] <title...>
  taskboard create [common flags] [--description <text>] [--priority <p>] <title...>
  taskboard edit [common flags] [--title <text>] [--description <text>] [--priority <p>] <id>
  taskboard rm [common flags] <id>
  taskboard export [common flags] [--format <json|csv|pdf>] [--search <text>] [--output <file>]
  taskboard shell [common flags]
  taskboard login [common flags] [--remember] [--username <name>] [--password-stdin]
  taskboard register [common flags] [--username <name>] [--password-stdin]
  taskboard logout [common flags]
  taskboard whoami [common flags]
  taskboard help [command]
  taskboard version

Priorities: low, medium (default), high
Page sizes: 3, 6 (default), 9, 12

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  TASKBOARD_API_URL      API base URL (default http://localhost:8000)
  TASKBOARD_TIMEOUT      Request timeout (default 10s)
  TASKBOARD_PAGE_SIZE    Initial page size (default 6)
  TASKBOARD_LOG_FORMAT   Debug log format: console or json
`
