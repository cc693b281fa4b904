package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/credential"
	"taskboard/internal/exitcode"
	"taskboard/internal/logging"
	"taskboard/internal/service"
)

const loginFailed = "Invalid credentials. Please try again."

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command. Without --remember the token goes
// to the session store and is gone after a reboot.
type LoginCmd struct {
	username      string
	remember      bool
	passwordStdin bool
}

// SetRemember sets the remember flag (for testing).
func (c *LoginCmd) SetRemember(remember bool) {
	c.remember = remember
}

// SetUsername sets the username flag (for testing).
func (c *LoginCmd) SetUsername(username string) {
	c.username = username
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in" }
func (c *LoginCmd) Usage() string {
	return "taskboard login [--remember] [--username <name>] [--password-stdin]"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.BoolVar(&c.remember, "remember", false, "")
	fs.BoolVar(&c.passwordStdin, "password-stdin", false, "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	username, password, err := c.credentials(newLineReader(in), errOut)
	if err != nil {
		return printError(errOut, err)
	}

	log := logging.New(errOut, cfg)
	tok, err := svc.Login(ctx, username, password)
	if err != nil {
		log.Debug().Err(err).Str("username", username).Msg("login failed")
		fmt.Fprintf(errOut, "error: %s\n", service.UserMessage(err, loginFailed))
		return exitcode.FromError(err)
	}
	tok = credential.WithExpiry(tok)

	if c.remember {
		if err := cfg.EnsureDir(); err != nil {
			fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
			return exitcode.UserError
		}
	}
	if err := credential.NewProvider(cfg).Save(tok, c.remember); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.UserError
	}
	log.Debug().Bool("remember", c.remember).Time("expiry", tok.Expiry).Msg("token saved")

	if !cfg.Quiet {
		fmt.Fprintln(out, "Welcome back! Successfully signed in.")
	}
	return exitcode.Success
}

// credentials collects the username and password from flags, stdin or
// prompts on errOut.
func (c *LoginCmd) credentials(lr *lineReader, errOut io.Writer) (string, string, error) {
	username := strings.TrimSpace(c.username)
	if username == "" {
		if c.passwordStdin {
			return "", "", &service.ValidationError{Field: "username", Message: "--password-stdin requires --username"}
		}
		u, err := lr.prompt(errOut, "Username: ")
		if err != nil {
			return "", "", &service.ValidationError{Field: "username", Message: "Username is required"}
		}
		username = strings.TrimSpace(u)
	}
	if username == "" {
		return "", "", &service.ValidationError{Field: "username", Message: "Username is required"}
	}

	var (
		password string
		err      error
	)
	if c.passwordStdin {
		password, err = lr.ReadLine()
	} else {
		password, err = lr.prompt(errOut, "Password: ")
	}
	if err != nil || password == "" {
		return "", "", &service.ValidationError{Field: "password", Message: "Password is required"}
	}
	return username, password, nil
}
