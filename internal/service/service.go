// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"

	"golang.org/x/oauth2"
)

// Service defines the interface for the remote task API.
// All HTTP calls go through this interface.
// Commands and the view-model never build requests directly.
//
// Task operations take the caller's bearer credential explicitly;
// implementations must not look it up themselves.
type Service interface {
	// Login exchanges a username and password for an access token.
	Login(ctx context.Context, username, password string) (*oauth2.Token, error)

	// Register creates an account.
	Register(ctx context.Context, username, password string) error

	// ListTasks returns every task of the token's owner in API order.
	ListTasks(ctx context.Context, tok *oauth2.Token) ([]Task, error)

	// CreateTask creates a task and returns it with its assigned ID.
	CreateTask(ctx context.Context, tok *oauth2.Token, in TaskInput) (Task, error)

	// UpdateTask overwrites title, description and priority of a task.
	UpdateTask(ctx context.Context, tok *oauth2.Token, id int, in TaskInput) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, tok *oauth2.Token, id int) error
}
