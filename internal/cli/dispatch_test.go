package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"taskboard/internal/backend/restapi"
	"taskboard/internal/cli"
	"taskboard/internal/commands"
	"taskboard/internal/config"
	"taskboard/internal/credential"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

// testEnv isolates settings and credential files, returning the config dir.
func testEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	t.Setenv("TASKBOARD_API_URL", "http://localhost:8000")
	t.Setenv("TASKBOARD_PAGE_SIZE", "6")
	t.Setenv("TASKBOARD_TIMEOUT", "10s")
	t.Setenv("TASKBOARD_LOG_FORMAT", "console")
	return t.TempDir()
}

func run(d *cli.Dispatcher, args []string, stdin string) (stdout, stderr string, code int) {
	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, strings.NewReader(stdin), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(d, []string{"unknowncmd"}, "")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(d, []string{"--quiet"}, "")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpAndVersion(t *testing.T) {
	dir := testEnv(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(d, []string{"help", "--config", dir}, "")
	if code != exitcode.Success || stderr != "" {
		t.Errorf("unexpected result %d %q", code, stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}

	stdout, _, code = run(d, []string{"version", "--config", dir}, "")
	if code != exitcode.Success || stdout != "taskboard 0.1.0\n" {
		t.Errorf("unexpected result %d %q", code, stdout)
	}
}

func TestDispatcher_FlagErrors(t *testing.T) {
	dir := testEnv(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"help", "--unknown"}, "error: unknown flag: -unknown\n"},
		{[]string{"list", "--config", dir, "--page"}, "error: flag needs an argument: -page\n"},
		{[]string{"list", "--config", dir, "--page", "x"}, `error: invalid value "x" for flag -page: parse error` + "\n"},
	}
	for _, tt := range tests {
		_, stderr, code := run(d, tt.args, "")
		if code != exitcode.UserError {
			t.Errorf("%v: expected exit code %d, got %d", tt.args, exitcode.UserError, code)
		}
		if stderr != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.args, tt.want, stderr)
		}
	}
}

func TestDispatcher_InvalidSettings(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("TASKBOARD_PAGE_SIZE", "5")
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(d, []string{"version", "--config", dir}, "")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid TASKBOARD_PAGE_SIZE: 5 (want 3, 6, 9 or 12)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_NotSignedIn(t *testing.T) {
	dir := testEnv(t)
	svc := testutil.NewFakeService()
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	for _, args := range [][]string{nil, {"list", "--config", dir}, {"add", "--config", dir, "x"}, {"rm", "1"}, {"shell"}} {
		_, stderr, code := run(d, args, "")
		if code != exitcode.AuthError {
			t.Errorf("%v: expected exit code %d, got %d", args, exitcode.AuthError, code)
		}
		if stderr != "error: not signed in (run: taskboard login)\n" {
			t.Errorf("%v: unexpected stderr %q", args, stderr)
		}
	}
	if svc.CallCount("ListTasks") != 0 {
		t.Error("expected no remote call without a credential")
	}
}

func TestDispatcher_ExpiredSession(t *testing.T) {
	dir := testEnv(t)
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	expired := (&testutil.FakeAPI{}).IssueToken("alice", -time.Minute)
	if err := credential.NewProvider(cfg).Save(credential.WithExpiry(&oauth2.Token{AccessToken: expired}), true); err != nil {
		t.Fatal(err)
	}

	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))
	_, stderr, code := run(d, []string{"list", "--config", dir}, "")
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session expired (run: taskboard login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_DebugLogs(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("TASKBOARD_LOG_FORMAT", "json")
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(d, []string{"version", "--config", dir, "--debug"}, "")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stderr, `"command":"version"`) || !strings.Contains(stderr, `"message":"dispatch"`) {
		t.Errorf("expected json debug log, got %q", stderr)
	}
}

// TestDispatcher_EndToEnd drives the real REST client against the fake API.
func TestDispatcher_EndToEnd(t *testing.T) {
	dir := testEnv(t)
	api := testutil.NewFakeAPI(t)
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		client, err := restapi.New(cfg, zerolog.Nop())
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	t.Setenv("TASKBOARD_API_URL", api.URL())
	d := cli.NewDispatcher(commands.DefaultRegistry, factory)

	steps := []struct {
		args   []string
		stdin  string
		code   int
		stdout string
	}{
		{[]string{"register"}, "alice_1\nsecret1\nsecret1\n", exitcode.Success, "Account created successfully! Please sign in.\n"},
		{[]string{"login", "--username", "alice_1", "--password-stdin"}, "secret1\n", exitcode.Success, "Welcome back! Successfully signed in.\n"},
		{[]string{"add", "--priority", "high", "Call", "Bob"}, "", exitcode.Success, "Task created successfully\n   #1  [High]    Call Bob\n"},
		{[]string{"add", "Buy milk", "-d", "2 liters"}, "", exitcode.Success, "Task created successfully\n   #2  [Medium]  Buy milk\n                 2 liters\n"},
		{[]string{"edit", "2", "--priority", "low"}, "", exitcode.Success, "Task updated successfully\n   #2  [Low]     Buy milk\n                 2 liters\n"},
		{[]string{"list", "--search", "milk"}, "", exitcode.Success, "Your Tasks  1 task of 2  [filtered: milk]\n------------\n   #2  [Low]     Buy milk\n                 2 liters\npage 1/1 (6 per page)\n"},
		{[]string{"rm", "1"}, "", exitcode.Success, "Task deleted successfully\n"},
		{[]string{"rm", "1"}, "", exitcode.UserError, ""},
		{[]string{"logout"}, "", exitcode.Success, "You have been logged out successfully\n"},
		{[]string{"list"}, "", exitcode.AuthError, ""},
	}
	for _, s := range steps {
		args := append([]string{s.args[0], "--config", dir}, s.args[1:]...)
		stdout, stderr, code := run(d, args, s.stdin)
		if code != s.code {
			t.Fatalf("%v: expected exit code %d, got %d (stderr %q)", s.args, s.code, code, stderr)
		}
		if stdout != s.stdout {
			t.Errorf("%v: expected stdout:\n%q\ngot:\n%q", s.args, s.stdout, stdout)
		}
	}
	if api.TaskCount("alice_1") != 1 {
		t.Errorf("expected 1 task left, got %d", api.TaskCount("alice_1"))
	}
}
