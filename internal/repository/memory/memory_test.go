package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/domain"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository"
)

func seedUser(t *testing.T, store *Store, id, email string) {
	t.Helper()
	err := store.CreateUser(context.Background(), &domain.UserAggregate{
		ID:        id,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		CreatedAt: time.Now().UTC(),
		Status:    domain.StatusActive,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	store := New()
	seedUser(t, store, "user-1", "ada@example.com")

	err := store.CreateUser(context.Background(), &domain.UserAggregate{
		ID:    "user-2",
		Email: "ada@example.com",
	})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestGetUserByIDNotFound(t *testing.T) {
	store := New()
	if _, err := store.GetUserByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoredAggregateDoesNotAliasCaller(t *testing.T) {
	store := New()
	original := &domain.UserAggregate{ID: "user-1", Email: "ada@example.com"}
	if err := store.CreateUser(context.Background(), original); err != nil {
		t.Fatalf("create: %v", err)
	}

	original.Email = "mutated@example.com"
	fetched, err := store.GetUserByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Email != "ada@example.com" {
		t.Fatalf("stored aggregate aliased caller state: %s", fetched.Email)
	}

	fetched.Companies = append(fetched.Companies, domain.Company{ID: "c1"})
	again, err := store.GetUserByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(again.Companies) != 0 {
		t.Fatal("returned aggregate aliased stored state")
	}
}

func TestListCompaniesUnknownUserReturnsEmpty(t *testing.T) {
	store := New()
	companies, err := store.ListCompanies(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected no error for unknown user, got %v", err)
	}
	if len(companies) != 0 {
		t.Fatalf("expected empty slice, got %d entries", len(companies))
	}
}

func TestAddPaymentFirstBecomesDefault(t *testing.T) {
	store := New()
	ctx := context.Background()
	seedUser(t, store, "user-1", "ada@example.com")

	first, err := store.AddPayment(ctx, "user-1", domain.Payment{ID: "pay-1"})
	if err != nil {
		t.Fatalf("add first payment: %v", err)
	}
	if !first.IsDefault {
		t.Fatal("returned first payment should be default")
	}
	second, err := store.AddPayment(ctx, "user-1", domain.Payment{ID: "pay-2"})
	if err != nil {
		t.Fatalf("add second payment: %v", err)
	}
	if second.IsDefault {
		t.Fatal("returned second payment should not be default")
	}

	payments, err := store.ListPayments(ctx, "user-1")
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}
	if !payments[0].IsDefault {
		t.Fatal("first payment should be default")
	}
	if payments[1].IsDefault {
		t.Fatal("second payment should not be default")
	}
}

func TestAddCartItemMergesSameService(t *testing.T) {
	store := New()
	ctx := context.Background()
	seedUser(t, store, "user-1", "ada@example.com")

	first := domain.CartItem{ID: "line-1", ServiceID: "svc-ra", ServiceName: "Registered Agent", Price: 49, Quantity: 2}
	second := domain.CartItem{ID: "line-2", ServiceID: "svc-ra", ServiceName: "Registered Agent", Price: 49, Quantity: 3}

	if err := store.AddCartItem(ctx, "user-1", first); err != nil {
		t.Fatalf("add first line: %v", err)
	}
	if err := store.AddCartItem(ctx, "user-1", second); err != nil {
		t.Fatalf("add second line: %v", err)
	}

	items, err := store.ListCart(ctx, "user-1")
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected merged single line, got %d", len(items))
	}
	if items[0].ID != "line-1" {
		t.Fatalf("merge should keep the original line id, got %s", items[0].ID)
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", items[0].Quantity)
	}
	if items[0].UpdatedAt.IsZero() {
		t.Fatal("merged line should be stamped with an update time")
	}
}

func TestSetCartItemQuantityZeroRemovesLine(t *testing.T) {
	store := New()
	ctx := context.Background()
	seedUser(t, store, "user-1", "ada@example.com")

	line := domain.CartItem{ID: "line-1", ServiceID: "svc-ra", ServiceName: "Registered Agent", Price: 49, Quantity: 2}
	if err := store.AddCartItem(ctx, "user-1", line); err != nil {
		t.Fatalf("add line: %v", err)
	}

	if err := store.SetCartItemQuantity(ctx, "user-1", "line-1", 0); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	items, err := store.ListCart(ctx, "user-1")
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(items))
	}

	err = store.SetCartItemQuantity(ctx, "user-1", "line-1", 1)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for removed line, got %v", err)
	}
}

func TestRemoveCartItemUnknownLine(t *testing.T) {
	store := New()
	ctx := context.Background()
	seedUser(t, store, "user-1", "ada@example.com")

	err := store.RemoveCartItem(ctx, "user-1", "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClearCart(t *testing.T) {
	store := New()
	ctx := context.Background()
	seedUser(t, store, "user-1", "ada@example.com")

	if err := store.AddCartItem(ctx, "user-1", domain.CartItem{ID: "line-1", ServiceID: "svc-1", Quantity: 1}); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := store.AddCartItem(ctx, "user-1", domain.CartItem{ID: "line-2", ServiceID: "svc-2", Quantity: 1}); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := store.ClearCart(ctx, "user-1"); err != nil {
		t.Fatalf("clear cart: %v", err)
	}
	items, err := store.ListCart(ctx, "user-1")
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(items))
	}
}
