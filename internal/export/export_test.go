package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"taskboard/internal/export"
	"taskboard/internal/service"
)

var tasks = []service.Task{
	{ID: 1, Title: "Buy milk", Description: "2 liters, skimmed", Priority: service.PriorityLow},
	{ID: 4, Title: "Call Bob", Priority: service.PriorityHigh},
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(&buf, "json", tasks, export.Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[1]["id"] != float64(4) || got[1]["priority"] != "high" {
		t.Errorf("unexpected record %v", got[1])
	}
}

func TestWrite_JSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(&buf, "JSON", nil, export.Options{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[]\n" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(&buf, "csv", tasks, export.Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][2] != "2 liters, skimmed" {
		t.Errorf("expected quoted description to survive, got %q", rows[1][2])
	}
}

func TestWrite_PDF(t *testing.T) {
	var buf bytes.Buffer
	opts := export.Options{Query: "b", Now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	if err := export.Write(&buf, "pdf", tasks, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("expected PDF header, got %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := export.Write(&bytes.Buffer{}, "xml", tasks, export.Options{})
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}
