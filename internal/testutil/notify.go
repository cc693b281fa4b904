package testutil

import (
	"sync"

	"taskboard/internal/tasklist"
)

// Recorder is a tasklist.Notifier that keeps every notification.
type Recorder struct {
	mu    sync.Mutex
	notes []Notification
}

// Notify implements tasklist.Notifier.
func (r *Recorder) Notify(kind tasklist.Kind, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, Notification{Kind: kind.String(), Title: title, Message: message})
}

// All returns the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

// Last returns the most recent notification, or the zero value.
func (r *Recorder) Last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}
	}
	return r.notes[len(r.notes)-1]
}
