// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/service"
	"taskboard/internal/tasklist"
)

const (
	// ListSeparator is the separator line under the list header.
	ListSeparator = "------------"

	// descriptionWidth is where long descriptions are cut.
	descriptionWidth = 72
)

var badgeColors = map[service.Priority]lipgloss.Color{
	service.PriorityLow:    lipgloss.Color("2"),
	service.PriorityMedium: lipgloss.Color("3"),
	service.PriorityHigh:   lipgloss.Color("1"),
}

// Printer renders task list views to a writer. Colors are only emitted when
// the writer is a terminal.
type Printer struct {
	w      io.Writer
	badges map[service.Priority]lipgloss.Style
	dim    lipgloss.Style
	title  lipgloss.Style
}

// NewPrinter creates a Printer for w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	p := &Printer{
		w:      w,
		badges: make(map[service.Priority]lipgloss.Style, len(badgeColors)),
		dim:    r.NewStyle().Faint(true),
		title:  r.NewStyle().Bold(true),
	}
	for prio, color := range badgeColors {
		p.badges[prio] = r.NewStyle().Foreground(color).Bold(true)
	}
	return p
}

// View prints the header, the tasks of the current page and the page footer.
func (p *Printer) View(v tasklist.View) {
	p.header(v)

	if v.TotalFiltered == 0 {
		if v.TotalAll == 0 {
			fmt.Fprintln(p.w, "No tasks yet. Create your first task with: taskboard add <title>")
		} else {
			fmt.Fprintln(p.w, "No tasks match your search. Try a different search term.")
		}
		return
	}

	for _, task := range v.Tasks {
		p.Task(task)
	}
	fmt.Fprintln(p.w, p.dim.Render(fmt.Sprintf("page %d/%d (%d per page)", v.CurrentPage, v.TotalPages, v.PageSize)))
}

func (p *Printer) header(v tasklist.View) {
	count := fmt.Sprintf("%d task%s", v.TotalFiltered, plural(v.TotalFiltered))
	if v.TotalFiltered != v.TotalAll {
		count += fmt.Sprintf(" of %d", v.TotalAll)
	}
	line := p.title.Render("Your Tasks") + "  " + count
	if v.HasActiveSearch {
		line += "  [filtered: " + strings.TrimSpace(v.Query) + "]"
	}
	fmt.Fprintln(p.w, line)
	fmt.Fprintln(p.w, ListSeparator)
}

// Task prints one task line plus an indented description line.
// Format: "{#ID:>5}  {BADGE:<8}  {TITLE}\n"
func (p *Printer) Task(t service.Task) {
	badge := fmt.Sprintf("%-8s", "["+t.Priority.Label()+"]")
	if style, ok := p.badges[t.Priority]; ok {
		badge = style.Render(badge)
	}
	fmt.Fprintf(p.w, "%5s  %s  %s\n", fmt.Sprintf("#%d", t.ID), badge, normalizeTitle(t.Title))
	if d := normalizeDescription(t.Description); d != "" {
		fmt.Fprintf(p.w, "%17s%s\n", "", d)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeDescription flattens a description to one line and cuts it at
// descriptionWidth runes.
func normalizeDescription(d string) string {
	d = strings.Join(strings.Fields(d), " ")
	r := []rune(d)
	if len(r) > descriptionWidth {
		return string(r[:descriptionWidth-3]) + "..."
	}
	return d
}
