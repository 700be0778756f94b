package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/domain"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository"
	"github.com/muhammadmueenarif/registeredagentsincapi/pkg/crypto"
)

// Error messages are surfaced to API clients verbatim.
var (
	ErrMissingFields      = errors.New("First name, last name, email, and password are required")
	ErrMissingCredentials = errors.New("Email and password are required")
	ErrEmailExists        = errors.New("User with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrInvalidToken       = errors.New("Invalid token format")
	ErrUnknownUser        = errors.New("Invalid token. User not found.")
)

// tokenPrefix marks the opaque session-lookup key. The token is not a
// cryptographic credential: it embeds the user id and is resolved by
// store lookup on every request.
const tokenPrefix = "user-"

// Service handles registration, login and bearer-token resolution.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger) Service {
	return Service{users: users, logger: logger}
}

// RegisterInput carries the registration form fields. Only the first
// four are required.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
}

// Register creates a new account. Exactly one aggregate may exist per
// email address.
func (s Service) Register(ctx context.Context, input RegisterInput) (*domain.UserAggregate, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	if _, err := s.users.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.UserAggregate{
		ID:               uuid.NewString(),
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Email:            input.Email,
		PasswordHash:     hash,
		Phone:            input.Phone,
		Country:          input.Country,
		Address:          input.Address,
		City:             input.City,
		State:            input.State,
		ZipCode:          input.ZipCode,
		CreatedAt:        time.Now().UTC(),
		Status:           domain.StatusActive,
		Companies:        []domain.Company{},
		Payments:         []domain.Payment{},
		Attorneys:        []domain.AttorneyInfo{},
		BusinessIdentity: []domain.BusinessIdentity{},
		Cart:             []domain.CartItem{},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// FindByCredentials resolves an aggregate by email and password. Wrong
// password and unknown email are indistinguishable to callers.
func (s Service) FindByCredentials(ctx context.Context, email, password string) (*domain.UserAggregate, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates a user and returns the aggregate plus a session
// token.
func (s Service) Login(ctx context.Context, email, password string) (*domain.UserAggregate, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}
	user, err := s.FindByCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, SessionToken(user.ID), nil
}

// SessionToken derives the bearer token for a user id.
func SessionToken(userID string) string {
	return tokenPrefix + userID
}

// Authorize resolves a bearer token to its aggregate. It fails closed:
// malformed tokens and unresolvable ids are both rejected.
func (s Service) Authorize(ctx context.Context, token string) (*domain.UserAggregate, error) {
	trimmed := strings.TrimSpace(token)
	if !strings.HasPrefix(trimmed, tokenPrefix) {
		return nil, ErrInvalidToken
	}
	userID := strings.TrimPrefix(trimmed, tokenPrefix)
	if userID == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns the contact-card projection of every account.
func (s Service) ListUsers(ctx context.Context) ([]domain.Contact, error) {
	return s.users.ListUsers(ctx)
}
