package cart

import (
	"context"
	"errors"
	"math"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/domain"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository"
)

// Error messages are surfaced to API clients verbatim.
var (
	ErrMissingFields   = errors.New("Service ID, name, and price are required")
	ErrInvalidPrice    = errors.New("Price must be a valid positive number")
	ErrMissingItem     = errors.New("Item ID and quantity are required")
	ErrInvalidQuantity = errors.New("Quantity must be 0 or greater")
	ErrMissingItemID   = errors.New("Item ID is required")
)

const defaultCategory = "business-services"

// Service manages the per-user shopping cart.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger) Service {
	return Service{users: users, logger: logger}
}

// AddInput carries a new cart line.
type AddInput struct {
	ServiceID   string  `json:"serviceId"`
	ServiceName string  `json:"serviceName"`
	ServiceType string  `json:"serviceType"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// Summary aggregates cart totals. TotalPrice is rounded to cents.
type Summary struct {
	TotalItems int     `json:"totalItems"`
	TotalPrice float64 `json:"totalPrice"`
	ItemCount  int     `json:"itemCount"`
}

// Add validates and stores a cart line. A line with the same service id
// already in the cart absorbs the quantity instead of duplicating.
func (s Service) Add(ctx context.Context, userID string, input AddInput) (domain.CartItem, error) {
	if input.ServiceID == "" || input.ServiceName == "" || input.Price == 0 {
		return domain.CartItem{}, ErrMissingFields
	}
	if input.Price < 0 {
		return domain.CartItem{}, ErrInvalidPrice
	}
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}
	category := input.Category
	if category == "" {
		category = defaultCategory
	}
	item := domain.CartItem{
		ID:          uuid.NewString(),
		ServiceID:   input.ServiceID,
		ServiceName: input.ServiceName,
		ServiceType: input.ServiceType,
		Price:       input.Price,
		Quantity:    quantity,
		Description: input.Description,
		Category:    category,
		AddedAt:     time.Now().UTC(),
	}
	if err := s.users.AddCartItem(ctx, userID, item); err != nil {
		return domain.CartItem{}, err
	}
	s.logger.Info("cart item added", "user_id", userID, "service_id", item.ServiceID)
	return item, nil
}

// List returns the cart lines and their totals.
func (s Service) List(ctx context.Context, userID string) ([]domain.CartItem, Summary, error) {
	items, err := s.users.ListCart(ctx, userID)
	if err != nil {
		return nil, Summary{}, err
	}
	summary := Summary{ItemCount: len(items)}
	for _, item := range items {
		summary.TotalItems += item.Quantity
		summary.TotalPrice += item.Price * float64(item.Quantity)
	}
	summary.TotalPrice = math.Round(summary.TotalPrice*100) / 100
	return items, summary, nil
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (s Service) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	if itemID == "" {
		return ErrMissingItem
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	return s.users.SetCartItemQuantity(ctx, userID, itemID, quantity)
}

// Remove deletes a line from the cart.
func (s Service) Remove(ctx context.Context, userID, itemID string) error {
	if itemID == "" {
		return ErrMissingItemID
	}
	return s.users.RemoveCartItem(ctx, userID, itemID)
}

// Clear empties the cart.
func (s Service) Clear(ctx context.Context, userID string) error {
	return s.users.ClearCart(ctx, userID)
}
