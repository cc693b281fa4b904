// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"fmt"
	"strings"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is assigned when a task carries no priority.
const DefaultPriority = PriorityMedium

// Priorities lists the accepted priorities in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority parses a priority name (case-insensitive, trimmed).
// An empty string yields DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultPriority, nil
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	default:
		return "", &ValidationError{
			Field:   "priority",
			Message: fmt.Sprintf("invalid priority: %s (want low, medium or high)", s),
		}
	}
}

// Label returns the capitalized display name.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityHigh:
		return "High"
	default:
		return "Medium"
	}
}

// Task represents a single task item.
// ID is assigned by the remote API.
type Task struct {
	ID          int
	Title       string
	Description string
	Priority    Priority
}

// TaskInput is the payload of create and update requests.
type TaskInput struct {
	Title       string
	Description string
	Priority    Priority
}

// Normalize trims title and description and fills in the default priority.
// Returns a ValidationError if the title is empty or the priority unknown.
func (in TaskInput) Normalize() (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return in, &ValidationError{Field: "title", Message: "Please enter a task title"}
	}
	p, err := ParsePriority(string(in.Priority))
	if err != nil {
		return in, err
	}
	in.Priority = p
	return in, nil
}
