package formation

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/corptools"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/domain"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository"
)

// Error messages are surfaced to API clients verbatim.
var (
	ErrNameRequired = errors.New("Company name is required")
	ErrIDRequired   = errors.New("Company ID is required")
	ErrNotOwned     = errors.New("Company does not belong to this account")
)

const (
	defaultState      = "Wyoming"
	defaultEntityType = "Limited Liability Company"
)

// Service proxies the formation API and keeps a local record of the
// companies each user created through it. The remote API stays
// authoritative for company data; the local records exist for ownership
// checks and account display.
type Service struct {
	api    *corptools.Client
	users  repository.UserRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(api *corptools.Client, users repository.UserRepository, logger *slog.Logger) Service {
	return Service{api: api, users: users, logger: logger}
}

// AccountInfo couples the remote account payload with the user's locally
// recorded companies.
type AccountInfo struct {
	Account   corptools.Result `json:"account"`
	Companies []domain.Company `json:"companies"`
}

// Account fetches the remote account record and attaches the caller's
// saved companies.
func (s Service) Account(ctx context.Context, userID string) AccountInfo {
	result := s.api.Get(ctx, "/account", nil)
	companies, err := s.users.ListCompanies(ctx, userID)
	if err != nil {
		s.logger.Error("list local companies failed", "user_id", userID, "error", err)
		companies = []domain.Company{}
	}
	return AccountInfo{Account: result, Companies: companies}
}

// ListCompanies proxies the remote company listing.
func (s Service) ListCompanies(ctx context.Context) corptools.Result {
	return s.api.Get(ctx, "/companies", nil)
}

// CreateCompany files a formation request upstream and, on success,
// records the company on the caller's aggregate.
func (s Service) CreateCompany(ctx context.Context, userID, name, state, entityType string) (corptools.Result, error) {
	if name == "" {
		return corptools.Result{}, ErrNameRequired
	}
	if state == "" {
		state = defaultState
	}
	if entityType == "" {
		entityType = defaultEntityType
	}
	body := map[string]any{
		"companies": []map[string]any{{
			"name":        name,
			"home_state":  state,
			"entity_type": entityType,
		}},
	}
	result := s.api.Post(ctx, "/companies", body)
	if result.Success {
		company := domain.Company{
			ID:        remoteCompanyID(result.Data),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.users.AddCompany(ctx, userID, company); err != nil {
			s.logger.Error("record company failed", "user_id", userID, "company_id", company.ID, "error", err)
		} else {
			s.logger.Info("company recorded", "user_id", userID, "company_id", company.ID)
		}
	}
	return result, nil
}

// GetCompany proxies a single-company fetch.
func (s Service) GetCompany(ctx context.Context, companyID string) (corptools.Result, error) {
	if companyID == "" {
		return corptools.Result{}, ErrIDRequired
	}
	return s.api.Get(ctx, "/companies/"+companyID, nil), nil
}

// UpdateCompany patches a company upstream after verifying the caller
// recorded it.
func (s Service) UpdateCompany(ctx context.Context, userID, companyID string, patch map[string]any) (corptools.Result, error) {
	if companyID == "" {
		return corptools.Result{}, ErrIDRequired
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return corptools.Result{}, err
	}
	if !user.OwnsCompany(companyID) {
		return corptools.Result{}, ErrNotOwned
	}
	return s.api.Patch(ctx, "/companies/"+companyID, patch), nil
}

// Services proxies the service catalog listing.
func (s Service) Services(ctx context.Context) corptools.Result {
	return s.api.Get(ctx, "/services", nil)
}

// Invoices proxies the invoice listing.
func (s Service) Invoices(ctx context.Context) corptools.Result {
	return s.api.Get(ctx, "/invoices", nil)
}

// PaymentMethods proxies the remote payment-method listing.
func (s Service) PaymentMethods(ctx context.Context) corptools.Result {
	return s.api.Get(ctx, "/payment-methods", nil)
}

// remoteCompanyID digs the created company's id out of the upstream
// response, falling back to a generated id when the shape is unexpected.
// The local id only has to be stable, matching the remote id is best
// effort.
func remoteCompanyID(data json.RawMessage) string {
	var payload struct {
		Companies []struct {
			ID any `json:"id"`
		} `json:"companies"`
		Result []struct {
			ID any `json:"id"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if len(payload.Companies) > 0 {
			if id := formatID(payload.Companies[0].ID); id != "" {
				return id
			}
		}
		if len(payload.Result) > 0 {
			if id := formatID(payload.Result[0].ID); id != "" {
				return id
			}
		}
	}
	return uuid.NewString()
}

func formatID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
