package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/service"
	"taskboard/internal/tasklist"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd runs an interactive session over one task list view-model.
// The collection is fetched once; searching and paging stay local.
type ShellCmd struct{}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return []string{"sh"} }
func (c *ShellCmd) Synopsis() string  { return "Interactive task board" }
func (c *ShellCmd) Usage() string     { return "taskboard shell [common flags]" }
func (c *ShellCmd) NeedsAuth() bool   { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	m, code := mountTaskList(ctx, cfg, svc, out, errOut)
	if code != exitcode.Success {
		return code
	}

	sh := &shell{m: m, p: output.NewPrinter(out), out: out, errOut: errOut}
	sh.p.View(m.View())

	lr := newLineReader(in)
	for ctx.Err() == nil {
		fmt.Fprint(out, "> ")
		line, err := lr.ReadLine()
		if err != nil {
			fmt.Fprintln(out)
			break
		}
		fields, err := splitFields(line)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}
		if len(fields) == 0 {
			continue
		}
		if quit := sh.exec(ctx, fields[0], fields[1:]); quit {
			break
		}
	}
	return exitcode.Success
}

type shell struct {
	m      *tasklist.Model
	p      *output.Printer
	out    io.Writer
	errOut io.Writer
}

// exec runs one shell command and reports whether the session should end.
// Failed mutations are reported by the view-model's notifier.
func (s *shell) exec(ctx context.Context, name string, args []string) bool {
	switch name {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
	case "ls", "list":
		s.show()
	case "search", "/":
		s.m.SetSearchQuery(strings.Join(args, " "))
		s.show()
	case "clear":
		s.m.SetSearchQuery("")
		s.show()
	case "page":
		n, ok := s.intArg(args, "page number")
		if !ok {
			return false
		}
		if err := s.m.SetPage(n); err != nil {
			fmt.Fprintf(s.errOut, "error: %v\n", err)
			return false
		}
		s.show()
	case "next", "n":
		if !s.m.NextPage() {
			fmt.Fprintln(s.out, "already on the last page")
			return false
		}
		s.show()
	case "prev", "p":
		if !s.m.PrevPage() {
			fmt.Fprintln(s.out, "already on the first page")
			return false
		}
		s.show()
	case "size":
		n, ok := s.intArg(args, "page size")
		if !ok {
			return false
		}
		if err := s.m.SetPageSize(n); err != nil {
			fmt.Fprintf(s.errOut, "error: %v\n", err)
			return false
		}
		s.show()
	case "reload":
		if err := s.m.Load(ctx); err == nil {
			s.show()
		}
	case "add":
		var f taskFlags
		rest, ok := s.parse(args, &f, false)
		if !ok {
			return false
		}
		if _, err := s.m.Create(ctx, f.input(rest)); err == nil {
			s.show()
		}
	case "edit":
		var f taskFlags
		rest, ok := s.parse(args, &f, true)
		if !ok {
			return false
		}
		id, err := ParseTaskID(rest)
		if err != nil {
			fmt.Fprintf(s.errOut, "error: %v\n", err)
			return false
		}
		if f.empty() {
			fmt.Fprintln(s.errOut, "error: nothing to change (use -t, -d or -p)")
			return false
		}
		if _, err := editTask(ctx, s.m, id, &f); err == nil {
			s.show()
		}
	case "rm", "delete":
		id, err := ParseTaskID(args)
		if err != nil {
			fmt.Fprintf(s.errOut, "error: %v\n", err)
			return false
		}
		if err := s.m.Remove(ctx, id); err == nil {
			s.show()
		}
	default:
		fmt.Fprintf(s.errOut, "error: unknown command: %s (try: help)\n", name)
	}
	return false
}

func (s *shell) show() {
	s.p.View(s.m.View())
}

func (s *shell) intArg(args []string, what string) (int, bool) {
	if len(args) != 1 {
		fmt.Fprintf(s.errOut, "error: %s required\n", what)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.errOut, "error: invalid %s: %s\n", what, args[0])
		return 0, false
	}
	return n, true
}

// parse reads task flags placed anywhere among the arguments.
func (s *shell) parse(args []string, f *taskFlags, withTitle bool) ([]string, bool) {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f.register(fs, withTitle)

	rest, err := ParseFlags(fs, args)
	if err != nil {
		fmt.Fprintf(s.errOut, "error: %v\n", err)
		return nil, false
	}
	return rest, true
}

const shellHelp = `Commands:
  ls                         Show the current page
  search <text>              Filter by title or description
  clear                      Clear the search
  page <n> | next | prev     Move between pages
  size <3|6|9|12>            Change the page size
  add [-d <text>] [-p <priority>] <title...>
  edit <id> [-t <title>] [-d <text>] [-p <priority>]
  rm <id>
  reload                     Fetch the task list again
  help
  quit
`
