package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/credential"
	"taskboard/internal/exitcode"
	"taskboard/internal/logging"
	"taskboard/internal/output"
	"taskboard/internal/service"
	"taskboard/internal/tasklist"
)

// mountTaskList builds the view-model for one invocation and performs the
// initial fetch. Load reports its own failure through the notifier, so the
// caller only needs the exit code.
func mountTaskList(ctx context.Context, cfg *config.Config, svc service.Service, out, errOut io.Writer) (*tasklist.Model, int) {
	m := tasklist.New(svc, credential.NewProvider(cfg),
		&output.Notifier{Out: out, Err: errOut, Quiet: cfg.Quiet},
		tasklist.WithPageSize(cfg.Env.PageSize),
		tasklist.WithLogger(logging.New(errOut, cfg)),
	)
	if err := m.Load(ctx); err != nil {
		return nil, exitcode.FromError(err)
	}
	return m, exitcode.Success
}

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// taskFlags are the task field flags shared by add, edit and the shell.
type taskFlags struct {
	title       optString
	description optString
	priority    optString
}

func (f *taskFlags) register(fs *flag.FlagSet, withTitle bool) {
	*f = taskFlags{}
	if withTitle {
		fs.Var(&f.title, "title", "")
		fs.Var(&f.title, "t", "")
	}
	fs.Var(&f.description, "description", "")
	fs.Var(&f.description, "d", "")
	fs.Var(&f.priority, "priority", "")
	fs.Var(&f.priority, "p", "")
}

// input builds the create payload; the title comes from the positional
// arguments.
func (f *taskFlags) input(args []string) service.TaskInput {
	return service.TaskInput{
		Title:       strings.Join(args, " "),
		Description: f.description.value,
		Priority:    service.Priority(f.priority.value),
	}
}

// merge applies the given flags on top of the current task.
func (f *taskFlags) merge(cur service.Task) service.TaskInput {
	in := service.TaskInput{Title: cur.Title, Description: cur.Description, Priority: cur.Priority}
	if f.title.set {
		in.Title = f.title.value
	}
	if f.description.set {
		in.Description = f.description.value
	}
	if f.priority.set {
		in.Priority = service.Priority(f.priority.value)
	}
	return in
}

func (f *taskFlags) empty() bool {
	return !f.title.set && !f.description.set && !f.priority.set
}

// editTask updates one task, keeping the fields not given in f.
// An unknown ID is left to Update, which rejects it.
func editTask(ctx context.Context, m *tasklist.Model, id int, f *taskFlags) (service.Task, error) {
	cur, _ := m.Find(id)
	return m.Update(ctx, id, f.merge(cur))
}

// ParseFlags parses fs over args, allowing flags after positional
// arguments. Everything after "--" is positional.
func ParseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// lineReader reads prompted answers line by line.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(in io.Reader) *lineReader {
	if in == nil {
		in = strings.NewReader("")
	}
	return &lineReader{r: bufio.NewReader(in)}
}

// ReadLine returns the next line without its line ending.
// io.EOF is only returned when nothing was read.
func (l *lineReader) ReadLine() (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// prompt writes label to w and reads the answer.
func (l *lineReader) prompt(w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	return l.ReadLine()
}

// splitFields splits a shell line into words. Single and double quotes
// group words; there are no escapes.
func splitFields(line string) ([]string, error) {
	var (
		fields  []string
		cur     strings.Builder
		quote   rune
		inField bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inField = true
		case r == ' ' || r == '\t':
			if inField {
				fields = append(fields, cur.String())
				cur.Reset()
				inField = false
			}
		default:
			cur.WriteRune(r)
			inField = true
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if inField {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

// printError writes err in the "error: ..." form and maps it to an exit code.
func printError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.FromError(err)
}
