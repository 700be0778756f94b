package memory

import (
	"context"
	"sync"
	"time"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/domain"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository"
)

// Store is the in-memory implementation of the user-scoped collection
// store. A single mutex serializes mutations, which also gives the
// per-aggregate atomicity the interface requires. Aggregates are cloned
// on the way in and out so callers never alias stored state.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*domain.UserAggregate
	byEmail map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[string]*domain.UserAggregate),
		byEmail: make(map[string]string),
	}
}

var _ repository.UserRepository = (*Store)(nil)

// CreateUser persists a new aggregate. Exactly one aggregate may exist
// per email address.
func (s *Store) CreateUser(ctx context.Context, user *domain.UserAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return repository.ErrConflict
	}
	if _, exists := s.users[user.ID]; exists {
		return repository.ErrConflict
	}
	s.users[user.ID] = user.Clone()
	s.byEmail[user.Email] = user.ID
	return nil
}

// GetUserByEmail fetches an aggregate by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.UserAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.users[id].Clone(), nil
}

// GetUserByID fetches an aggregate by identifier.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.UserAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user.Clone(), nil
}

// ListUsers returns the contact-card projection of every aggregate.
func (s *Store) ListUsers(ctx context.Context) ([]domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contacts := make([]domain.Contact, 0, len(s.users))
	for _, user := range s.users {
		contacts = append(contacts, user.ContactCard())
	}
	return contacts, nil
}

// mutate applies fn to the stored aggregate under the write lock.
func (s *Store) mutate(userID string, fn func(*domain.UserAggregate) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	return fn(user)
}

// AddCompany appends a company record to the aggregate.
func (s *Store) AddCompany(ctx context.Context, userID string, company domain.Company) error {
	return s.mutate(userID, func(u *domain.UserAggregate) error {
		u.AddCompany(company)
		return nil
	})
}

// ListCompanies returns the user's recorded companies, or an empty slice
// for an unknown user.
func (s *Store) ListCompanies(ctx context.Context, userID string) ([]domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return []domain.Company{}, nil
	}
	return append([]domain.Company(nil), user.Companies...), nil
}

// AddPayment appends a payment method, flagging it default when it is the
// aggregate's first. The stored record is returned.
func (s *Store) AddPayment(ctx context.Context, userID string, payment domain.Payment) (domain.Payment, error) {
	var stored domain.Payment
	err := s.mutate(userID, func(u *domain.UserAggregate) error {
		stored = u.AddPayment(payment)
		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}
	return stored, nil
}

// ListPayments returns the user's payment methods.
func (s *Store) ListPayments(ctx context.Context, userID string) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]domain.Payment(nil), user.Payments...), nil
}

// AddAttorney appends an attorney record.
func (s *Store) AddAttorney(ctx context.Context, userID string, attorney domain.AttorneyInfo) error {
	return s.mutate(userID, func(u *domain.UserAggregate) error {
		u.Attorneys = append(u.Attorneys, attorney)
		return nil
	})
}

// ListAttorneys returns the user's attorney records.
func (s *Store) ListAttorneys(ctx context.Context, userID string) ([]domain.AttorneyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]domain.AttorneyInfo(nil), user.Attorneys...), nil
}

// AddBusinessIdentity appends a business identity order.
func (s *Store) AddBusinessIdentity(ctx context.Context, userID string, identity domain.BusinessIdentity) error {
	return s.mutate(userID, func(u *domain.UserAggregate) error {
		u.BusinessIdentity = append(u.BusinessIdentity, identity)
		return nil
	})
}

// ListBusinessIdentities returns the user's business identity orders.
func (s *Store) ListBusinessIdentities(ctx context.Context, userID string) ([]domain.BusinessIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]domain.BusinessIdentity(nil), user.BusinessIdentity...), nil
}

// AddCartItem inserts a cart line, merging quantity into an existing line
// with the same service id.
func (s *Store) AddCartItem(ctx context.Context, userID string, item domain.CartItem) error {
	return s.mutate(userID, func(u *domain.UserAggregate) error {
		u.AddCartItem(item, time.Now().UTC())
		return nil
	})
}

// ListCart returns the user's cart lines.
func (s *Store) ListCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]domain.CartItem(nil), user.Cart...), nil
}

// SetCartItemQuantity updates a cart line's quantity; zero removes it.
func (s *Store) SetCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	return s.mutate(userID, func(u *domain.UserAggregate) error {
		if !u.SetCartQuantity(itemID, quantity, time.Now().UTC()) {
			return repository.ErrNotFound
		}
		return nil
	})
}

// RemoveCartItem deletes a cart line.
func (s *Store) RemoveCartItem(ctx context.Context, userID, itemID string) error {
	return s.mutate(userID, func(u *domain.UserAggregate) error {
		if !u.RemoveCartItem(itemID) {
			return repository.ErrNotFound
		}
		return nil
	})
}

// ClearCart empties the user's cart.
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	return s.mutate(userID, func(u *domain.UserAggregate) error {
		u.ClearCart()
		return nil
	})
}
