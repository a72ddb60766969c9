// Package worker archives stored cost records to a JSONL export file, driven
// by cost-added events with a startup catch-up pass for anything missed.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"costbook/internal/amqp"
	"costbook/internal/core"
	applog "costbook/internal/log"
	"costbook/internal/storage"
)

// ExportWorker appends each new cost record as one JSON line to the archive
// and marks it exported in the store.
type ExportWorker struct {
	store      *storage.Store
	exportPath string
	batchSize  int
}

// exportLine is the archive's wire format, one object per line.
type exportLine struct {
	ID          int64   `json:"id"`
	Sum         float64 `json:"sum"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Day         int     `json:"day"`
	CreatedAt   string  `json:"created_at"`
}

func NewExportWorker(store *storage.Store, exportPath string, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:      store,
		exportPath: exportPath,
		batchSize:  batchSize,
	}
}

// HandleCostAdded processes one cost-added event.
func (w *ExportWorker) HandleCostAdded(ctx context.Context, msg *amqp.CostAddedMessage) error {
	record, err := w.store.CostByID(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("load cost %d: %w", msg.ID, err)
	}
	return w.export(ctx, record)
}

// CatchUp exports records whose events were lost (broker down, worker
// offline). Runs until the pending backlog drains.
func (w *ExportWorker) CatchUp(ctx context.Context) error {
	for {
		pending, err := w.store.PendingExport(ctx, w.batchSize)
		if err != nil {
			return fmt.Errorf("pending export: %w", err)
		}
		if len(pending) == 0 {
			return nil
		}

		slog.InfoContext(ctx, "Catching up unexported costs", "count", len(pending))
		for _, record := range pending {
			if err := w.export(ctx, record); err != nil {
				return err
			}
		}
	}
}

func (w *ExportWorker) export(ctx context.Context, record core.CostRecord) error {
	line := exportLine{
		ID:          record.ID,
		Sum:         record.Sum,
		Currency:    string(record.Currency),
		Category:    record.Category,
		Description: record.Description,
		Year:        record.Date.Year,
		Month:       record.Date.Month,
		Day:         record.Date.Day,
		CreatedAt:   record.CreatedAt.Format(time.RFC3339),
	}

	body, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("marshal export line: %w", err)
	}

	f, err := os.OpenFile(w.exportPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(body, '\n')); err != nil {
		return fmt.Errorf("write export line: %w", err)
	}

	if err := w.store.MarkExported(ctx, record.ID); err != nil {
		return err
	}

	fields := applog.NewFields().
		WithComponent(applog.ComponentExport).
		WithOperation(applog.OpExport)
	fields[applog.FieldCostID] = record.ID
	fields[applog.FieldPath] = w.exportPath
	slog.InfoContext(ctx, "Cost exported", fields.ToSlice()...)
	return nil
}
