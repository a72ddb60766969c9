// Package services orchestrates the cost store with the event pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"costbook/internal/core"
	applog "costbook/internal/log"
	"costbook/internal/storage"
)

// EventPublisher announces newly stored costs to downstream consumers.
type EventPublisher interface {
	PublishCostAdded(ctx context.Context, id int64) error
	Close() error
}

// CostService persists costs and publishes cost-added events. Publishing is
// best effort; the record is durable locally before any event is sent.
type CostService struct {
	store     *storage.Store
	publisher EventPublisher
}

func NewCostService(store *storage.Store, publisher EventPublisher) *CostService {
	return &CostService{
		store:     store,
		publisher: publisher,
	}
}

// AddCost validates and stores a draft, then announces the new record.
func (s *CostService) AddCost(ctx context.Context, draft core.CostDraft) (core.CostRecord, error) {
	record, err := s.store.Add(ctx, draft)
	if err != nil {
		return core.CostRecord{}, fmt.Errorf("save cost: %w", err)
	}

	if s.publisher == nil {
		return record, nil
	}
	if err := s.publisher.PublishCostAdded(ctx, record.ID); err != nil {
		// The cost is saved; the export worker catches up from the store.
		fields := applog.NewFields().
			WithComponent(applog.ComponentCost).
			WithOperation(applog.OpAdd).
			WithCost(record.ID, record.Sum, string(record.Currency), record.Category).
			WithError(err)
		slog.ErrorContext(ctx, "Failed to publish cost added event", fields.ToSlice()...)
	}

	return record, nil
}

// Close closes the store and the publisher.
func (s *CostService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close cost service: %v", errs)
	}
	return nil
}
