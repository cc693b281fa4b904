package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
)

const registerFailed = "Registration failed. Please try again."

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username      string
	passwordStdin bool
}

// SetUsername sets the username flag (for testing).
func (c *RegisterCmd) SetUsername(username string) {
	c.username = username
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskboard register [--username <name>] [--password-stdin]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.BoolVar(&c.passwordStdin, "password-stdin", false, "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	lr := newLineReader(in)
	username := c.username
	if username == "" && !c.passwordStdin {
		username, _ = lr.prompt(errOut, "Username: ")
	}
	var password, confirm string
	if c.passwordStdin {
		// With --password-stdin the password is read once and not confirmed.
		password, _ = lr.ReadLine()
		confirm = password
	} else {
		password, _ = lr.prompt(errOut, "Password: ")
		confirm, _ = lr.prompt(errOut, "Confirm password: ")
	}

	username = strings.TrimSpace(username)
	if err := ValidateRegistration(username, password, confirm); err != nil {
		return printError(errOut, err)
	}

	if err := svc.Register(ctx, username, password); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", service.UserMessage(err, registerFailed))
		return exitcode.FromError(err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "Account created successfully! Please sign in.")
	}
	return exitcode.Success
}

// ValidateRegistration checks sign-up input before it is sent.
func ValidateRegistration(username, password, confirm string) error {
	switch {
	case username == "":
		return &service.ValidationError{Field: "username", Message: "Username is required"}
	case len(username) < 3:
		return &service.ValidationError{Field: "username", Message: "Username must be at least 3 characters"}
	case !usernamePattern.MatchString(username):
		return &service.ValidationError{Field: "username", Message: "Username can only contain letters, numbers, and underscores"}
	case password == "":
		return &service.ValidationError{Field: "password", Message: "Password is required"}
	case len(password) < 6:
		return &service.ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	case password != confirm:
		return &service.ValidationError{Field: "confirm", Message: "Passwords do not match"}
	}
	return nil
}
