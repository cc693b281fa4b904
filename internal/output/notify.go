package output

import (
	"fmt"
	"io"

	"taskboard/internal/tasklist"
)

// Notifier prints view-model notifications. Errors go to Err; success and
// info messages go to Out unless Quiet is set.
type Notifier struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool
}

// Notify implements tasklist.Notifier.
func (n *Notifier) Notify(kind tasklist.Kind, title, message string) {
	switch kind {
	case tasklist.Error:
		fmt.Fprintf(n.Err, "error: %s\n", message)
	default:
		if !n.Quiet {
			fmt.Fprintln(n.Out, message)
		}
	}
}
