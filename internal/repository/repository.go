package repository

import (
	"context"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/domain"
)

// UserRepository is the user-scoped collection store: one aggregate per
// account, every nested collection mutated through whole-aggregate
// read-modify-write. Implementations keep each mutation atomic with
// respect to a single aggregate.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.UserAggregate) error
	GetUserByEmail(ctx context.Context, email string) (*domain.UserAggregate, error)
	GetUserByID(ctx context.Context, id string) (*domain.UserAggregate, error)
	ListUsers(ctx context.Context) ([]domain.Contact, error)

	AddCompany(ctx context.Context, userID string, company domain.Company) error
	// ListCompanies returns an empty slice, not an error, when the user
	// does not exist.
	ListCompanies(ctx context.Context, userID string) ([]domain.Company, error)

	// AddPayment returns the record as stored, which carries the default
	// flag when the method is the aggregate's first.
	AddPayment(ctx context.Context, userID string, payment domain.Payment) (domain.Payment, error)
	ListPayments(ctx context.Context, userID string) ([]domain.Payment, error)

	AddAttorney(ctx context.Context, userID string, attorney domain.AttorneyInfo) error
	ListAttorneys(ctx context.Context, userID string) ([]domain.AttorneyInfo, error)

	AddBusinessIdentity(ctx context.Context, userID string, identity domain.BusinessIdentity) error
	ListBusinessIdentities(ctx context.Context, userID string) ([]domain.BusinessIdentity, error)

	AddCartItem(ctx context.Context, userID string, item domain.CartItem) error
	ListCart(ctx context.Context, userID string) ([]domain.CartItem, error)
	// SetCartItemQuantity removes the item when quantity is zero. It
	// returns ErrNotFound when either the user or the item is missing.
	SetCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) error
	RemoveCartItem(ctx context.Context, userID, itemID string) error
	ClearCart(ctx context.Context, userID string) error
}
