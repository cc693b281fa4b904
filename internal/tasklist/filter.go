package tasklist

import (
	"strings"

	"taskboard/internal/service"
)

// Matches reports whether t matches the search query.
// The trimmed, lower-cased query must be a substring of the lower-cased
// title or description. A blank query matches everything.
func Matches(t service.Task, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// Filter returns the tasks matching query, in collection order.
// The result never aliases tasks.
func Filter(tasks []service.Task, query string) []service.Task {
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, query) {
			out = append(out, t)
		}
	}
	return out
}

// Paginate returns the window of page (1-based) with the given size.
// Out-of-range pages yield an empty window.
func Paginate(tasks []service.Task, page, size int) []service.Task {
	if page < 1 || size < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(tasks) {
		return nil
	}
	end := min(start+size, len(tasks))
	out := make([]service.Task, end-start)
	copy(out, tasks[start:end])
	return out
}

// TotalPages is ceil(n / size); zero tasks means zero pages.
func TotalPages(n, size int) int {
	if n <= 0 || size < 1 {
		return 0
	}
	return (n + size - 1) / size
}
