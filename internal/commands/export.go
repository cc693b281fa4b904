package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/export"
	"taskboard/internal/service"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command. It writes every task matching
// the search, not just one page.
type ExportCmd struct {
	format string
	search string
	output string
}

// SetFormat sets the format (for testing).
func (c *ExportCmd) SetFormat(f string) {
	c.format = f
}

// SetSearch sets the search query (for testing).
func (c *ExportCmd) SetSearch(q string) {
	c.search = q
}

// SetOutput sets the output path (for testing).
func (c *ExportCmd) SetOutput(path string) {
	c.output = path
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Export tasks as JSON, CSV or PDF" }
func (c *ExportCmd) Usage() string {
	return "taskboard export [--format <json|csv|pdf>] [--search <text>] [--output <file>]"
}
func (c *ExportCmd) NeedsAuth() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "json", "")
	fs.StringVar(&c.format, "f", "json", "")
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.StringVar(&c.output, "output", "", "")
	fs.StringVar(&c.output, "o", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	format := strings.ToLower(strings.TrimSpace(c.format))
	if format == "" {
		format = "json"
	}
	if !slices.Contains(export.Formats, format) {
		fmt.Fprintf(errOut, "error: unknown format: %s (want json, csv or pdf)\n", c.format)
		return exitcode.UserError
	}
	if format == "pdf" && c.output == "" {
		fmt.Fprintln(errOut, "error: pdf export needs --output <file>")
		return exitcode.UserError
	}

	m, code := mountTaskList(ctx, cfg, svc, out, errOut)
	if code != exitcode.Success {
		return code
	}
	m.SetSearchQuery(c.search)
	tasks := m.Filtered()

	opts := export.Options{Query: c.search, Now: time.Now()}
	if c.output == "" {
		if err := export.Write(out, format, tasks, opts); err != nil {
			return printError(errOut, err)
		}
		return exitcode.Success
	}

	if err := writeFile(c.output, func(w io.Writer) error {
		return export.Write(w, format, tasks, opts)
	}); err != nil {
		fmt.Fprintf(errOut, "error: failed to write %s: %v\n", c.output, err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "exported %d task%s to %s\n", len(tasks), plural(len(tasks)), c.output)
	}
	return exitcode.Success
}

// writeFile creates path and runs write on it. The close error is kept
// since it may carry a failed flush.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
