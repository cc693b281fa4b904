// Package export writes task lists as JSON, CSV or PDF.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskboard/internal/service"
)

// Formats lists the supported formats.
var Formats = []string{"json", "csv", "pdf"}

type record struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Options describe the exported list.
type Options struct {
	// Query is the search the list was filtered by, shown in the PDF header.
	Query string

	// Now stamps the PDF; zero means time.Now.
	Now time.Time
}

// Write encodes tasks in format to w.
func Write(w io.Writer, format string, tasks []service.Task, opts Options) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return writeJSON(w, tasks)
	case "csv":
		return writeCSV(w, tasks)
	case "pdf":
		return writePDF(w, tasks, opts)
	default:
		return &service.ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unknown format: %s (want json, csv or pdf)", format),
		}
	}
}

func writeJSON(w io.Writer, tasks []service.Task) error {
	out := make([]record, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, record{ID: t.ID, Title: t.Title, Description: t.Description, Priority: string(t.Priority)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeCSV(w io.Writer, tasks []service.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "description", "priority"}); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := cw.Write([]string{strconv.Itoa(t.ID), t.Title, t.Description, string(t.Priority)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, tasks []service.Task, opts Options) error {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetTitle("Task list", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task list")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 9)
	summary := fmt.Sprintf("%d task%s, exported %s", len(tasks), plural(len(tasks)), now.Format(time.DateTime))
	if q := strings.TrimSpace(opts.Query); q != "" {
		summary += fmt.Sprintf(", search %q", q)
	}
	pdf.MultiCell(0, 5, tr(summary), "0", "L", false)
	pdf.Ln(4)

	for _, t := range tasks {
		pdf.SetFont("Arial", "B", 11)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("#%d  [%s]  %s", t.ID, t.Priority.Label(), t.Title)), "0", "L", false)
		if d := strings.TrimSpace(t.Description); d != "" {
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(0, 5, tr(d), "0", "L", false)
		}
		pdf.Ln(2)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
