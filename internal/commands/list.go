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
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskboard` (no args) and `taskboard list [flags]`.
type ListCmd struct {
	search string
	page   int
	size   int
}

// SetSearch sets the search query (for testing).
func (c *ListCmd) SetSearch(q string) {
	c.search = q
}

// SetPage sets the page number (for testing).
func (c *ListCmd) SetPage(page int) {
	c.page = page
}

// SetSize sets the page size (for testing).
func (c *ListCmd) SetSize(size int) {
	c.size = size
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskboard list [--search <text>] [--page <n>] [--size <3|6|9|12>]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.IntVar(&c.page, "page", 1, "")
	fs.IntVar(&c.size, "size", 0, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.page == 0 {
		c.page = 1
	}

	m, code := mountTaskList(ctx, cfg, svc, out, errOut)
	if code != exitcode.Success {
		return code
	}

	if c.size != 0 {
		if err := m.SetPageSize(c.size); err != nil {
			return printError(errOut, err)
		}
	}
	m.SetSearchQuery(c.search)
	if err := m.SetPage(c.page); err != nil {
		return printError(errOut, err)
	}

	output.NewPrinter(out).View(m.View())
	return exitcode.Success
}
