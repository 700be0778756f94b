package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/domain"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository"
)

// Store implements the user-scoped collection store on PostgreSQL. Each
// aggregate is one row: the whole record lives in a JSONB document, with
// id and email lifted into columns for lookup and uniqueness. Mutations
// lock the row (SELECT ... FOR UPDATE), apply the domain rule, and write
// the document back, so concurrent writers to the same aggregate are
// serialized by the database.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ repository.UserRepository = (*Store)(nil)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CreateUser inserts a new aggregate row.
func (s *Store) CreateUser(ctx context.Context, user *domain.UserAggregate) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}
	const query = `INSERT INTO user_accounts (id, email, doc, created_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := s.pool.Exec(ctx, query, user.ID, user.Email, doc, user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// GetUserByEmail fetches an aggregate by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.UserAggregate, error) {
	const query = `SELECT doc FROM user_accounts WHERE email = $1`
	return s.getUser(ctx, query, email)
}

// GetUserByID retrieves an aggregate by identifier.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.UserAggregate, error) {
	const query = `SELECT doc FROM user_accounts WHERE id = $1`
	return s.getUser(ctx, query, id)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (*domain.UserAggregate, error) {
	var doc []byte
	if err := s.pool.QueryRow(ctx, query, arg).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	var user domain.UserAggregate
	if err := json.Unmarshal(doc, &user); err != nil {
		return nil, fmt.Errorf("unmarshal aggregate: %w", err)
	}
	return &user, nil
}

// ListUsers returns the contact-card projection of every aggregate.
func (s *Store) ListUsers(ctx context.Context) ([]domain.Contact, error) {
	const query = `SELECT doc FROM user_accounts ORDER BY created_at`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]domain.Contact, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var user domain.UserAggregate
		if err := json.Unmarshal(doc, &user); err != nil {
			return nil, fmt.Errorf("unmarshal aggregate: %w", err)
		}
		contacts = append(contacts, user.ContactCard())
	}
	return contacts, rows.Err()
}

// mutate runs fn against the locked aggregate row inside a transaction
// and persists the updated document.
func (s *Store) mutate(ctx context.Context, userID string, fn func(*domain.UserAggregate) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var doc []byte
	const selectQuery = `SELECT doc FROM user_accounts WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRow(ctx, selectQuery, userID).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	var user domain.UserAggregate
	if err := json.Unmarshal(doc, &user); err != nil {
		return fmt.Errorf("unmarshal aggregate: %w", err)
	}
	if err := fn(&user); err != nil {
		return err
	}
	updated, err := json.Marshal(&user)
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}
	const updateQuery = `UPDATE user_accounts SET doc = $2 WHERE id = $1`
	if _, err := tx.Exec(ctx, updateQuery, userID, updated); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AddCompany appends a company record to the aggregate.
func (s *Store) AddCompany(ctx context.Context, userID string, company domain.Company) error {
	return s.mutate(ctx, userID, func(u *domain.UserAggregate) error {
		u.AddCompany(company)
		return nil
	})
}

// ListCompanies returns the user's recorded companies, or an empty slice
// for an unknown user.
func (s *Store) ListCompanies(ctx context.Context, userID string) ([]domain.Company, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.Company{}, nil
		}
		return nil, err
	}
	return user.Companies, nil
}

// AddPayment appends a payment method, flagging it default when it is the
// aggregate's first. The stored record is returned.
func (s *Store) AddPayment(ctx context.Context, userID string, payment domain.Payment) (domain.Payment, error) {
	var stored domain.Payment
	err := s.mutate(ctx, userID, func(u *domain.UserAggregate) error {
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
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Payments, nil
}

// AddAttorney appends an attorney record.
func (s *Store) AddAttorney(ctx context.Context, userID string, attorney domain.AttorneyInfo) error {
	return s.mutate(ctx, userID, func(u *domain.UserAggregate) error {
		u.Attorneys = append(u.Attorneys, attorney)
		return nil
	})
}

// ListAttorneys returns the user's attorney records.
func (s *Store) ListAttorneys(ctx context.Context, userID string) ([]domain.AttorneyInfo, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Attorneys, nil
}

// AddBusinessIdentity appends a business identity order.
func (s *Store) AddBusinessIdentity(ctx context.Context, userID string, identity domain.BusinessIdentity) error {
	return s.mutate(ctx, userID, func(u *domain.UserAggregate) error {
		u.BusinessIdentity = append(u.BusinessIdentity, identity)
		return nil
	})
}

// ListBusinessIdentities returns the user's business identity orders.
func (s *Store) ListBusinessIdentities(ctx context.Context, userID string) ([]domain.BusinessIdentity, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.BusinessIdentity, nil
}

// AddCartItem inserts a cart line, merging quantity into an existing line
// with the same service id.
func (s *Store) AddCartItem(ctx context.Context, userID string, item domain.CartItem) error {
	return s.mutate(ctx, userID, func(u *domain.UserAggregate) error {
		u.AddCartItem(item, nowUTC())
		return nil
	})
}

// ListCart returns the user's cart lines.
func (s *Store) ListCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Cart, nil
}

// SetCartItemQuantity updates a cart line's quantity; zero removes it.
func (s *Store) SetCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	return s.mutate(ctx, userID, func(u *domain.UserAggregate) error {
		if !u.SetCartQuantity(itemID, quantity, nowUTC()) {
			return repository.ErrNotFound
		}
		return nil
	})
}

// RemoveCartItem deletes a cart line.
func (s *Store) RemoveCartItem(ctx context.Context, userID, itemID string) error {
	return s.mutate(ctx, userID, func(u *domain.UserAggregate) error {
		if !u.RemoveCartItem(itemID) {
			return repository.ErrNotFound
		}
		return nil
	})
}

// ClearCart empties the user's cart.
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	return s.mutate(ctx, userID, func(u *domain.UserAggregate) error {
		u.ClearCart()
		return nil
	})
}

func nowUTC() time.Time { return time.Now().UTC() }

// Health verifies database connectivity.
func (s *Store) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
