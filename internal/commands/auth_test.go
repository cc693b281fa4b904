package commands_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"taskboard/internal/commands"
	"taskboard/internal/credential"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/testutil"
)

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestLoginCommand_SessionStore(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret1")
	cfg := newConfig(t, false)

	stdout, stderr, code := runWithConfig(t, &commands.LoginCmd{}, cfg, svc, nil, "alice\nsecret1\n")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "Welcome back! Successfully signed in.\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if stderr != "Username: Password: " {
		t.Errorf("expected prompts on stderr, got %q", stderr)
	}
	if !fileExists(cfg.SessionPath()) {
		t.Error("expected session token")
	}
	if fileExists(cfg.TokenPath()) {
		t.Error("expected no remembered token")
	}

	tok, kind, err := credential.NewProvider(cfg).Current()
	if err != nil || kind != credential.Session || tok.AccessToken != "token-alice" {
		t.Errorf("unexpected current token %v %q %v", tok, kind, err)
	}
}

func TestLoginCommand_RememberReplacesSession(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret1")
	cfg := newConfig(t, true)
	if err := credential.NewProvider(cfg).Save(&oauth2.Token{AccessToken: "old"}, false); err != nil {
		t.Fatal(err)
	}

	cmd := &commands.LoginCmd{}
	cmd.SetRemember(true)
	cmd.SetUsername("alice")
	stdout, _, code := runWithConfig(t, cmd, cfg, svc, nil, "secret1\n")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", stdout)
	}
	if !fileExists(cfg.TokenPath()) {
		t.Error("expected remembered token")
	}
	if fileExists(cfg.SessionPath()) {
		t.Error("expected session token to be cleared")
	}
}

func TestLoginCommand_BadCredentials(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret1")
	cfg := newConfig(t, false)

	cmd := &commands.LoginCmd{}
	cmd.SetUsername("alice")
	_, stderr, code := runWithConfig(t, cmd, cfg, svc, nil, "wrong\n")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasSuffix(stderr, "error: Incorrect username or password\n") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if cfg.HasToken() {
		t.Error("expected no token after failed login")
	}
}

func TestLoginCommand_FallbackMessage(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.LoginErr = &service.NetworkError{Op: "POST /token", Err: errors.New("connection refused")}

	cmd := &commands.LoginCmd{}
	cmd.SetUsername("alice")
	_, stderr, code := runWithConfig(t, cmd, newConfig(t, false), svc, nil, "secret1\n")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasSuffix(stderr, "error: Invalid credentials. Please try again.\n") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLoginCommand_MissingInput(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runWithConfig(t, &commands.LoginCmd{}, newConfig(t, false), svc, nil, "\n")
	if code != exitcode.UserError || !strings.HasSuffix(stderr, "error: Username is required\n") {
		t.Errorf("unexpected result %d %q", code, stderr)
	}

	_, stderr, code = runWithConfig(t, &commands.LoginCmd{}, newConfig(t, false), svc, nil, "alice\n")
	if code != exitcode.UserError || !strings.HasSuffix(stderr, "error: Password is required\n") {
		t.Errorf("unexpected result %d %q", code, stderr)
	}

	if svc.CallCount("Login") != 0 {
		t.Error("expected no remote call")
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		username, password, confirm string
		want                        string
	}{
		{"", "secret1", "secret1", "Username is required"},
		{"al", "secret1", "secret1", "Username must be at least 3 characters"},
		{"al-ice", "secret1", "secret1", "Username can only contain letters, numbers, and underscores"},
		{"alice", "", "", "Password is required"},
		{"alice", "12345", "12345", "Password must be at least 6 characters"},
		{"alice", "secret1", "secret2", "Passwords do not match"},
		{"alice_2", "secret1", "secret1", ""},
	}
	for _, tt := range tests {
		err := commands.ValidateRegistration(tt.username, tt.password, tt.confirm)
		if tt.want == "" {
			if err != nil {
				t.Errorf("%q: unexpected error: %v", tt.username, err)
			}
			continue
		}
		var verr *service.ValidationError
		if !errors.As(err, &verr) || verr.Message != tt.want {
			t.Errorf("%q/%q: expected %q, got %v", tt.username, tt.password, tt.want, err)
		}
	}
}

func TestRegisterCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	stdout, _, code := runWithConfig(t, &commands.RegisterCmd{}, newConfig(t, false), svc, nil, "bob_1\nhunter22\nhunter22\n")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "Account created successfully! Please sign in.\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if _, err := svc.Login(context.Background(), "bob_1", "hunter22"); err != nil {
		t.Errorf("expected registered user to sign in: %v", err)
	}
}

func TestRegisterCommand_Errors(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("bob_1", "hunter22")

	_, stderr, code := runWithConfig(t, &commands.RegisterCmd{}, newConfig(t, false), svc, nil, "bob_1\nhunter22\nhunter22\n")
	if code != exitcode.UserError || !strings.HasSuffix(stderr, "error: Username already registered\n") {
		t.Errorf("unexpected result %d %q", code, stderr)
	}

	_, stderr, code = runWithConfig(t, &commands.RegisterCmd{}, newConfig(t, false), svc, nil, "carol\nhunter22\nhunter23\n")
	if code != exitcode.UserError || !strings.HasSuffix(stderr, "error: Passwords do not match\n") {
		t.Errorf("unexpected result %d %q", code, stderr)
	}

	svc.RegisterErr = &service.RemoteError{StatusCode: 500}
	_, stderr, code = runWithConfig(t, &commands.RegisterCmd{}, newConfig(t, false), svc, nil, "dave\nhunter22\nhunter22\n")
	if code != exitcode.BackendError || !strings.HasSuffix(stderr, "error: Registration failed. Please try again.\n") {
		t.Errorf("unexpected result %d %q", code, stderr)
	}
	if svc.CallCount("Register") != 2 {
		t.Errorf("expected 2 remote calls, got %d", svc.CallCount("Register"))
	}
}

func TestLogoutCommand_ClearsBothStores(t *testing.T) {
	cfg := newConfig(t, false)
	p := credential.NewProvider(cfg)
	if err := p.Persistent.Save(&oauth2.Token{AccessToken: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := p.Session.Save(&oauth2.Token{AccessToken: "b"}); err != nil {
		t.Fatal(err)
	}

	stdout, _, code := runWithConfig(t, &commands.LogoutCmd{}, cfg, nil, nil, "")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "You have been logged out successfully\n" {
		t.Errorf("expected sign-out notice, got %q", stdout)
	}
	if cfg.HasToken() {
		t.Error("expected both tokens to be removed")
	}
}

func TestLogoutCommand_NotSignedIn(t *testing.T) {
	stdout, _, code := runWithConfig(t, &commands.LogoutCmd{}, newConfig(t, false), nil, nil, "")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "not signed in\n" {
		t.Errorf("expected 'not signed in', got %q", stdout)
	}

	stdout, _, _ = runWithConfig(t, &commands.LogoutCmd{}, newConfig(t, true), nil, nil, "")
	if stdout != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", stdout)
	}
}

func TestWhoamiCommand(t *testing.T) {
	cfg := newConfig(t, false)
	access := (&testutil.FakeAPI{}).IssueToken("alice", time.Hour)
	if err := credential.NewProvider(cfg).Save(credential.WithExpiry(&oauth2.Token{AccessToken: access}), true); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runWithConfig(t, &commands.WhoamiCmd{}, cfg, nil, nil, "")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if !strings.HasPrefix(stdout, "user:    alice\nsession: remembered\nexpires: ") {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestWhoamiCommand_ExpiredAndMissing(t *testing.T) {
	cfg := newConfig(t, false)
	expired := &oauth2.Token{AccessToken: "opaque", Expiry: time.Now().Add(-time.Minute)}
	if err := credential.NewProvider(cfg).Save(expired, false); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runWithConfig(t, &commands.WhoamiCmd{}, cfg, nil, nil, "")
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stdout, "user:    (unknown)\nsession: session\n") {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if stderr != "error: session expired (run: taskboard login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}

	_, stderr, code = runWithConfig(t, &commands.WhoamiCmd{}, newConfig(t, false), nil, nil, "")
	if code != exitcode.AuthError || stderr != "error: not signed in (run: taskboard login)\n" {
		t.Errorf("unexpected result %d %q", code, stderr)
	}
}
