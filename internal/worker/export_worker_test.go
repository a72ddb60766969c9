package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"costbook/internal/amqp"
	"costbook/internal/core"
	"costbook/internal/storage"
)

func setup(t *testing.T) (*storage.Store, *ExportWorker, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.Open(filepath.Join(dir, "costs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	exportPath := filepath.Join(dir, "export.jsonl")
	return store, NewExportWorker(store, exportPath, 10), exportPath
}

func readLines(t *testing.T, path string) []exportLine {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export file: %v", err)
	}
	defer f.Close()
	var lines []exportLine
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var line exportLine
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("bad export line %q: %v", sc.Text(), err)
		}
		lines = append(lines, line)
	}
	return lines
}

func TestHandleCostAdded(t *testing.T) {
	store, w, exportPath := setup(t)
	ctx := context.Background()

	record, err := store.Add(ctx, core.CostDraft{Sum: 12.5, Currency: core.ILS, Category: "Food", Description: "falafel"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := w.HandleCostAdded(ctx, amqp.NewCostAddedMessage(record.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	lines := readLines(t, exportPath)
	if len(lines) != 1 || lines[0].ID != record.ID || lines[0].Currency != "ILS" {
		t.Fatalf("unexpected export content %+v", lines)
	}

	pending, err := store.PendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("record should be marked exported, still pending: %+v", pending)
	}
}

func TestCatchUpDrainsBacklog(t *testing.T) {
	store, w, exportPath := setup(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Add(ctx, core.CostDraft{Sum: float64(i + 1), Currency: core.USD, Category: "c", Description: "d"}); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	if err := w.CatchUp(ctx); err != nil {
		t.Fatalf("catch up: %v", err)
	}

	if lines := readLines(t, exportPath); len(lines) != 5 {
		t.Fatalf("expected 5 export lines, got %d", len(lines))
	}
	pending, err := store.PendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("backlog not drained: %+v", pending)
	}
}

func TestCatchUpNoBacklog(t *testing.T) {
	_, w, exportPath := setup(t)

	if err := w.CatchUp(context.Background()); err != nil {
		t.Fatalf("catch up on empty store: %v", err)
	}
	if _, err := os.Stat(exportPath); !os.IsNotExist(err) {
		t.Fatalf("no export file should be created without records")
	}
}

func TestHandleCostAddedMissingRecord(t *testing.T) {
	_, w, _ := setup(t)

	if err := w.HandleCostAdded(context.Background(), amqp.NewCostAddedMessage(999)); err == nil {
		t.Fatalf("expected error for unknown record")
	}
}
