// Package tasklist holds the task list view-model: the cached collection of
// a user's tasks and the filtered, paginated view derived from it.
//
// The collection is fetched once by Load. Searching and paging are local.
// Mutations are sent to the remote API first and applied to the cache only
// after the API confirms them, in the order the responses arrive.
package tasklist

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"taskboard/internal/service"
)

// PageSizes are the accepted page sizes.
var PageSizes = []int{3, 6, 9, 12}

// DefaultPageSize is used when no Option overrides it.
const DefaultPageSize = 6

// View is the paginated view plus its metadata.
type View struct {
	Tasks           []service.Task
	TotalFiltered   int
	TotalAll        int
	TotalPages      int
	CurrentPage     int
	PageSize        int
	HasActiveSearch bool
	Query           string
	Loading         bool
}

// Model is the task list view-model. It is safe for concurrent use; the
// lock is never held across a remote call.
type Model struct {
	svc    service.Service
	creds  oauth2.TokenSource
	notify Notifier
	log    zerolog.Logger

	mu      sync.Mutex
	tasks   []service.Task
	query   string
	page    int
	size    int
	loading bool
}

// Option configures a Model.
type Option func(*Model)

// WithPageSize sets the initial page size. Unsupported sizes are ignored.
func WithPageSize(n int) Option {
	return func(m *Model) {
		if slices.Contains(PageSizes, n) {
			m.size = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Model) { m.log = log }
}

// New creates a Model. Nothing is fetched until Load is called.
// A nil notifier discards notifications.
func New(svc service.Service, creds oauth2.TokenSource, n Notifier, opts ...Option) *Model {
	if n == nil {
		n = discard{}
	}
	m := &Model{
		svc:     svc,
		creds:   creds,
		notify:  n,
		log:     zerolog.Nop(),
		page:    1,
		size:    DefaultPageSize,
		loading: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load fetches the whole collection once. On failure the cached collection
// is left as it was and an error notification is shown.
func (m *Model) Load(ctx context.Context) error {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	tasks, err := m.fetch(ctx)

	m.mu.Lock()
	m.loading = false
	if err == nil {
		m.tasks = dedupe(tasks)
	}
	m.mu.Unlock()

	if err != nil {
		m.log.Debug().Err(err).Msg("load failed")
		m.notify.Notify(Error, "Error", service.UserMessage(err, "Failed to fetch tasks"))
		return fmt.Errorf("load tasks: %w", err)
	}
	m.log.Debug().Int("count", len(tasks)).Msg("tasks loaded")
	return nil
}

func (m *Model) fetch(ctx context.Context) ([]service.Task, error) {
	tok, err := m.creds.Token()
	if err != nil {
		return nil, err
	}
	return m.svc.ListTasks(ctx, tok)
}

// Loading reports whether the initial fetch is still outstanding.
func (m *Model) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// SetSearchQuery replaces the search query and returns to page 1.
func (m *Model) SetSearchQuery(q string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.query = q
	m.page = 1
}

// SetPageSize changes the page size and returns to page 1.
func (m *Model) SetPageSize(n int) error {
	if !slices.Contains(PageSizes, n) {
		return &service.ValidationError{
			Field:   "size",
			Message: fmt.Sprintf("invalid page size: %d (want 3, 6, 9 or 12)", n),
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size = n
	m.page = 1
	return nil
}

// SetPage moves to page p. Valid pages are 1..max(totalPages, 1).
func (m *Model) SetPage(p int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := max(TotalPages(len(Filter(m.tasks, m.query)), m.size), 1)
	if p < 1 || p > last {
		return &service.ValidationError{
			Field:   "page",
			Message: fmt.Sprintf("page out of range: %d (1-%d)", p, last),
		}
	}
	m.page = p
	return nil
}

// NextPage advances one page if there is one.
func (m *Model) NextPage() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page >= TotalPages(len(Filter(m.tasks, m.query)), m.size) {
		return false
	}
	m.page++
	return true
}

// PrevPage goes back one page if not on the first.
func (m *Model) PrevPage() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page <= 1 {
		return false
	}
	m.page--
	return true
}

// Create validates in locally, sends it, and appends the created task.
// An empty title is rejected without a remote call.
func (m *Model) Create(ctx context.Context, in service.TaskInput) (service.Task, error) {
	in, err := in.Normalize()
	if err != nil {
		m.notify.Notify(Error, "Error", service.UserMessage(err, "Invalid task"))
		return service.Task{}, err
	}

	task, err := m.create(ctx, in)
	if err != nil {
		m.notify.Notify(Error, "Error", service.UserMessage(err, "Failed to create task"))
		return service.Task{}, fmt.Errorf("create task: %w", err)
	}

	m.mu.Lock()
	if i := m.indexOf(task.ID); i >= 0 {
		m.tasks[i] = task
	} else {
		m.tasks = append(m.tasks, task)
	}
	m.page = 1
	m.mu.Unlock()

	m.log.Debug().Int("task_id", task.ID).Msg("task created")
	m.notify.Notify(Success, "Success!", "Task created successfully")
	return task, nil
}

func (m *Model) create(ctx context.Context, in service.TaskInput) (service.Task, error) {
	tok, err := m.creds.Token()
	if err != nil {
		return service.Task{}, err
	}
	return m.svc.CreateTask(ctx, tok, in)
}

// Update overwrites a cached task once the API confirms the change.
// Unknown IDs and empty titles are rejected without a remote call.
// A confirmation for a task deleted in the meantime is dropped.
func (m *Model) Update(ctx context.Context, id int, in service.TaskInput) (service.Task, error) {
	if _, ok := m.Find(id); !ok {
		err := &service.ValidationError{Field: "id", Message: fmt.Sprintf("task not found: %d", id)}
		m.notify.Notify(Error, "Error", err.Message)
		return service.Task{}, err
	}
	in, err := in.Normalize()
	if err != nil {
		m.notify.Notify(Error, "Error", service.UserMessage(err, "Invalid task"))
		return service.Task{}, err
	}

	task, err := m.update(ctx, id, in)
	if err != nil {
		m.notify.Notify(Error, "Error", service.UserMessage(err, "Failed to update task"))
		return service.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	task.ID = id

	m.mu.Lock()
	i := m.indexOf(id)
	if i >= 0 {
		m.tasks[i] = task
	}
	m.mu.Unlock()

	if i < 0 {
		m.log.Debug().Int("task_id", id).Msg("update confirmed for removed task, dropped")
	}
	m.notify.Notify(Success, "Success!", "Task updated successfully")
	return task, nil
}

func (m *Model) update(ctx context.Context, id int, in service.TaskInput) (service.Task, error) {
	tok, err := m.creds.Token()
	if err != nil {
		return service.Task{}, err
	}
	return m.svc.UpdateTask(ctx, tok, id, in)
}

// Remove deletes a task once the API confirms it. If that leaves the
// current page empty and it is not the first page, the view steps back
// one page.
func (m *Model) Remove(ctx context.Context, id int) error {
	err := m.remove(ctx, id)
	if err != nil {
		m.notify.Notify(Error, "Error", service.UserMessage(err, "Failed to delete task"))
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	m.mu.Lock()
	if i := m.indexOf(id); i >= 0 {
		m.tasks = slices.Delete(m.tasks, i, i+1)
	}
	if m.page > 1 && len(Paginate(Filter(m.tasks, m.query), m.page, m.size)) == 0 {
		m.page--
	}
	m.mu.Unlock()

	m.log.Debug().Int("task_id", id).Msg("task deleted")
	m.notify.Notify(Success, "Success!", "Task deleted successfully")
	return nil
}

func (m *Model) remove(ctx context.Context, id int) error {
	tok, err := m.creds.Token()
	if err != nil {
		return err
	}
	return m.svc.DeleteTask(ctx, tok, id)
}

// View derives the current page from the collection, query and page state.
func (m *Model) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	filtered := Filter(m.tasks, m.query)
	return View{
		Tasks:           Paginate(filtered, m.page, m.size),
		TotalFiltered:   len(filtered),
		TotalAll:        len(m.tasks),
		TotalPages:      TotalPages(len(filtered), m.size),
		CurrentPage:     m.page,
		PageSize:        m.size,
		HasActiveSearch: strings.TrimSpace(m.query) != "",
		Query:           m.query,
		Loading:         m.loading,
	}
}

// Filtered returns every task matching the current query, across pages.
func (m *Model) Filtered() []service.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Filter(m.tasks, m.query)
}

// Find returns a copy of the cached task with the given ID.
func (m *Model) Find(id int) (service.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		return m.tasks[i], true
	}
	return service.Task{}, false
}

// indexOf must be called with mu held.
func (m *Model) indexOf(id int) int {
	return slices.IndexFunc(m.tasks, func(t service.Task) bool { return t.ID == id })
}

// dedupe keeps the first task of each ID.
func dedupe(tasks []service.Task) []service.Task {
	seen := make(map[int]struct{}, len(tasks))
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
