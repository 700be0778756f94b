package cart

import (
	"context"
	"errors"
	"io"
	"testing"

	"log/slog"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/domain"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository/memory"
)

func testService(t *testing.T) Service {
	t.Helper()
	store := memory.New()
	err := store.CreateUser(context.Background(), &domain.UserAggregate{ID: "user-1", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, log)
}

func TestAddAppliesDefaults(t *testing.T) {
	svc := testService(t)
	item, err := svc.Add(context.Background(), "user-1", AddInput{
		ServiceID:   "svc-ra",
		ServiceName: "Registered Agent",
		Price:       49,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.ID == "" {
		t.Fatal("expected generated line id")
	}
	if item.Quantity != 1 {
		t.Fatalf("expected quantity default 1, got %d", item.Quantity)
	}
	if item.Category != "business-services" {
		t.Fatalf("expected default category, got %q", item.Category)
	}
	if item.AddedAt.IsZero() {
		t.Fatal("expected AddedAt stamp")
	}
}

func TestAddValidation(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "user-1", AddInput{ServiceName: "X", Price: 10}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	// A zero price reads as an absent field, not a free item.
	if _, err := svc.Add(ctx, "user-1", AddInput{ServiceID: "s", ServiceName: "X"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields for zero price, got %v", err)
	}
	if _, err := svc.Add(ctx, "user-1", AddInput{ServiceID: "s", ServiceName: "X", Price: -5}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestListSummarizesTotals(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "user-1", AddInput{ServiceID: "svc-1", ServiceName: "Agent", Price: 49.99, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(ctx, "user-1", AddInput{ServiceID: "svc-2", ServiceName: "EIN", Price: 79.01}); err != nil {
		t.Fatalf("add: %v", err)
	}

	items, summary, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if summary.ItemCount != 2 {
		t.Fatalf("unexpected item count: %d", summary.ItemCount)
	}
	if summary.TotalItems != 3 {
		t.Fatalf("unexpected total items: %d", summary.TotalItems)
	}
	if summary.TotalPrice != 178.99 {
		t.Fatalf("unexpected total price: %v", summary.TotalPrice)
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, "user-1", AddInput{ServiceID: "svc-1", ServiceName: "Agent", Price: 49, Quantity: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.UpdateQuantity(ctx, "user-1", item.ID, 0); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	items, _, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(items))
	}
}

func TestUpdateQuantityValidation(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if err := svc.UpdateQuantity(ctx, "user-1", "", 1); !errors.Is(err, ErrMissingItem) {
		t.Fatalf("expected ErrMissingItem, got %v", err)
	}
	if err := svc.UpdateQuantity(ctx, "user-1", "line-1", -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := svc.UpdateQuantity(ctx, "user-1", "missing", 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveRequiresItemID(t *testing.T) {
	svc := testService(t)
	if err := svc.Remove(context.Background(), "user-1", ""); !errors.Is(err, ErrMissingItemID) {
		t.Fatalf("expected ErrMissingItemID, got %v", err)
	}
}
