package profile

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/domain"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository"
)

// Error messages are surfaced to API clients verbatim.
var (
	ErrAttorneyContact = errors.New("Attorney email, first name, and last name are required when attorney notification is enabled")
	ErrShortDomain     = errors.New("Domain name must be at least 3 characters long")
	ErrShortPhone      = errors.New("Phone number must be at least 10 digits")
)

const defaultDomainExtension = "com"

// Service stores attorney and business-identity records. Both
// collections are append-only.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger) Service {
	return Service{users: users, logger: logger}
}

// AttorneyInput carries the attorney form fields.
type AttorneyInput struct {
	NotifyAttorney    bool   `json:"notifyAttorney"`
	AttorneyEmail     string `json:"attorneyEmail"`
	AttorneyFirstName string `json:"attorneyFirstName"`
	AttorneyLastName  string `json:"attorneyLastName"`
	AttorneyPhone     string `json:"attorneyPhone"`
	AttorneyFirm      string `json:"attorneyFirm"`
}

// AddAttorney validates and appends an attorney record. Contact fields
// are only required when notification is requested.
func (s Service) AddAttorney(ctx context.Context, userID string, input AttorneyInput) (domain.AttorneyInfo, error) {
	if input.NotifyAttorney && (input.AttorneyEmail == "" || input.AttorneyFirstName == "" || input.AttorneyLastName == "") {
		return domain.AttorneyInfo{}, ErrAttorneyContact
	}
	attorney := domain.AttorneyInfo{
		ID:                uuid.NewString(),
		NotifyAttorney:    input.NotifyAttorney,
		AttorneyEmail:     input.AttorneyEmail,
		AttorneyFirstName: input.AttorneyFirstName,
		AttorneyLastName:  input.AttorneyLastName,
		AttorneyPhone:     input.AttorneyPhone,
		AttorneyFirm:      input.AttorneyFirm,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.users.AddAttorney(ctx, userID, attorney); err != nil {
		return domain.AttorneyInfo{}, err
	}
	s.logger.Info("attorney record added", "user_id", userID, "attorney_id", attorney.ID)
	return attorney, nil
}

// ListAttorneys returns the user's attorney records.
func (s Service) ListAttorneys(ctx context.Context, userID string) ([]domain.AttorneyInfo, error) {
	return s.users.ListAttorneys(ctx, userID)
}

// BusinessIdentityInput carries the business identity order fields.
type BusinessIdentityInput struct {
	DomainName       string `json:"domainName"`
	DomainExtension  string `json:"domainExtension"`
	WebsiteHosting   bool   `json:"websiteHosting"`
	BusinessEmail    string `json:"businessEmail"`
	PhoneNumber      string `json:"phoneNumber"`
	PhoneAreaCode    string `json:"phoneAreaCode"`
	BusinessSupplies bool   `json:"businessSupplies"`
	SuppliesType     string `json:"suppliesType"`
}

// AddBusinessIdentity validates and appends a business identity order.
func (s Service) AddBusinessIdentity(ctx context.Context, userID string, input BusinessIdentityInput) (domain.BusinessIdentity, error) {
	if input.DomainName != "" && len(input.DomainName) < 3 {
		return domain.BusinessIdentity{}, ErrShortDomain
	}
	if input.PhoneNumber != "" && len(input.PhoneNumber) < 10 {
		return domain.BusinessIdentity{}, ErrShortPhone
	}
	extension := input.DomainExtension
	if extension == "" {
		extension = defaultDomainExtension
	}
	identity := domain.BusinessIdentity{
		ID:               uuid.NewString(),
		DomainName:       input.DomainName,
		DomainExtension:  extension,
		WebsiteHosting:   input.WebsiteHosting,
		BusinessEmail:    input.BusinessEmail,
		PhoneNumber:      input.PhoneNumber,
		PhoneAreaCode:    input.PhoneAreaCode,
		BusinessSupplies: input.BusinessSupplies,
		SuppliesType:     input.SuppliesType,
		CreatedAt:        time.Now().UTC(),
		Status:           domain.StatusPending,
	}
	if err := s.users.AddBusinessIdentity(ctx, userID, identity); err != nil {
		return domain.BusinessIdentity{}, err
	}
	s.logger.Info("business identity added", "user_id", userID, "identity_id", identity.ID)
	return identity, nil
}

// ListBusinessIdentities returns the user's business identity orders.
func (s Service) ListBusinessIdentities(ctx context.Context, userID string) ([]domain.BusinessIdentity, error) {
	return s.users.ListBusinessIdentities(ctx, userID)
}
