// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"taskboard/internal/service"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = &service.RemoteError{StatusCode: 404, Message: "Task not found"}

// ErrUnauthorized is returned when no token is passed.
var ErrUnauthorized = &service.RemoteError{StatusCode: 401, Message: "Not authenticated"}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int
	users  map[string]string

	// Calls counts invocations per method name.
	Calls map[string]int

	// Tokens records the access token of every task call.
	Tokens []string

	// Error injection for testing
	LoginErr    error
	RegisterErr error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		users:  make(map[string]string),
		Calls:  make(map[string]int),
	}
}

// AddTask adds a task with the given ID.
func (f *FakeService) AddTask(id int, title, description string, priority service.Priority) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Description: description, Priority: priority})
	if id >= f.nextID {
		f.nextID = id + 1
	}
}

// AddUser registers a user directly.
func (f *FakeService) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// CallCount returns how often method was called.
func (f *FakeService) CallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.Calls[method]
}

func (f *FakeService) record(method string, tok *oauth2.Token) error {
	f.Calls[method]++
	if method == "Login" || method == "Register" {
		return nil
	}
	if tok == nil || tok.AccessToken == "" {
		return ErrUnauthorized
	}
	f.Tokens = append(f.Tokens, tok.AccessToken)
	return nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Login", nil)
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	if pw, ok := f.users[username]; !ok || pw != password {
		return nil, &service.RemoteError{StatusCode: 401, Message: "Incorrect username or password"}
	}
	return &oauth2.Token{AccessToken: "token-" + username, TokenType: "Bearer"}, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, username, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Register", nil)
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	if _, ok := f.users[username]; ok {
		return &service.RemoteError{StatusCode: 400, Message: "Username already registered"}
	}
	f.users[username] = password
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, tok *oauth2.Token) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListTasks", tok); err != nil {
		return nil, err
	}
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, tok *oauth2.Token, in service.TaskInput) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateTask", tok); err != nil {
		return service.Task{}, err
	}
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	task := service.Task{ID: f.nextID, Title: in.Title, Description: in.Description, Priority: in.Priority}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, tok *oauth2.Token, id int, in service.TaskInput) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateTask", tok); err != nil {
		return service.Task{}, err
	}
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = service.Task{ID: id, Title: in.Title, Description: in.Description, Priority: in.Priority}
			return f.tasks[i], nil
		}
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, tok *oauth2.Token, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteTask", tok); err != nil {
		return err
	}
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// StaticToken is an oauth2.TokenSource for tests.
func StaticToken(access string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: access, TokenType: "Bearer"})
}

// FailingToken is an oauth2.TokenSource that always returns err.
type FailingToken struct{ Err error }

func (f FailingToken) Token() (*oauth2.Token, error) {
	if f.Err == nil {
		return nil, errors.New("no token")
	}
	return nil, f.Err
}

// Notification is one recorded notification.
type Notification struct {
	Kind    string
	Title   string
	Message string
}

func (n Notification) String() string {
	return fmt.Sprintf("%s: %s", n.Kind, n.Message)
}
