package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/credential"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the signed-in user read from the stored token.
// It never calls the API.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string     { return "taskboard whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return false }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	tok, kind, err := credential.NewProvider(cfg).Current()
	switch {
	case errors.Is(err, credential.ErrNotSignedIn):
		fmt.Fprintln(errOut, "error: not signed in (run: taskboard login)")
		return exitcode.AuthError
	case err != nil && !errors.Is(err, credential.ErrExpired):
		fmt.Fprintf(errOut, "error: failed to read token: %v\n", err)
		return exitcode.AuthError
	}

	user := "(unknown)"
	if claims, cerr := credential.Inspect(tok); cerr == nil && claims.Subject != "" {
		user = claims.Subject
	}
	fmt.Fprintf(out, "user:    %s\n", user)
	fmt.Fprintf(out, "session: %s\n", kind)
	if tok.Expiry.IsZero() {
		fmt.Fprintln(out, "expires: never")
	} else {
		fmt.Fprintf(out, "expires: %s\n", tok.Expiry.Local().Format(time.DateTime))
	}

	if errors.Is(err, credential.ErrExpired) {
		fmt.Fprintln(errOut, "error: session expired (run: taskboard login)")
		return exitcode.AuthError
	}
	return exitcode.Success
}
