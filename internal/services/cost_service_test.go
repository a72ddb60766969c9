package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"costbook/internal/core"
	"costbook/internal/storage"
)

type fakePublisher struct {
	published []int64
	err       error
	closed    bool
}

func (f *fakePublisher) PublishCostAdded(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func newTestService(t *testing.T, publisher EventPublisher) *CostService {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "costs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	service := NewCostService(store, publisher)
	t.Cleanup(func() { service.Close() })
	return service
}

func TestAddCostPublishesEvent(t *testing.T) {
	publisher := &fakePublisher{}
	service := newTestService(t, publisher)

	record, err := service.AddCost(context.Background(),
		core.CostDraft{Sum: 20, Currency: core.EURO, Category: "Food", Description: "groceries"})
	if err != nil {
		t.Fatalf("add cost: %v", err)
	}
	if len(publisher.published) != 1 || publisher.published[0] != record.ID {
		t.Fatalf("expected event for id %d, got %v", record.ID, publisher.published)
	}
}

func TestAddCostSurvivesPublishFailure(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	service := newTestService(t, publisher)

	record, err := service.AddCost(context.Background(),
		core.CostDraft{Sum: 20, Currency: core.USD, Category: "Food", Description: "lunch"})
	if err != nil {
		t.Fatalf("publish failure must not fail the add: %v", err)
	}
	if record.ID == 0 {
		t.Fatalf("expected stored record")
	}
}

func TestAddCostWithoutPublisher(t *testing.T) {
	service := newTestService(t, nil)

	if _, err := service.AddCost(context.Background(),
		core.CostDraft{Sum: 5, Currency: core.GBP, Category: "c", Description: "d"}); err != nil {
		t.Fatalf("add without publisher: %v", err)
	}
}

func TestAddCostRejectsInvalidDraft(t *testing.T) {
	publisher := &fakePublisher{}
	service := newTestService(t, publisher)

	_, err := service.AddCost(context.Background(),
		core.CostDraft{Sum: -1, Currency: core.USD, Category: "c", Description: "d"})
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(publisher.published) != 0 {
		t.Fatalf("no event may be published for a rejected draft")
	}
}

func TestCloseNilComponents(t *testing.T) {
	service := &CostService{}
	if err := service.Close(); err != nil {
		t.Fatalf("close with nil components: %v", err)
	}
}
