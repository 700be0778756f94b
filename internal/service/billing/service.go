package billing

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/paymentintent"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/domain"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository"
)

// Error messages are surfaced to API clients verbatim.
var (
	ErrMissingFields       = errors.New("First name, last name, card number, security code, expiration month, and expiration year are required")
	ErrInvalidCardNumber   = errors.New("Please enter a valid Credit Card Number")
	ErrInvalidSecurityCode = errors.New("Security code must be 3-4 digits")
	ErrCardExpired         = errors.New("Card has expired")
	ErrAmountRequired      = errors.New("Amount is required")
	ErrStripeNotConfigured = errors.New("Stripe not configured")
)

// Service stores card-on-file records and creates Stripe payment
// intents for checkout.
type Service struct {
	users     repository.UserRepository
	logger    *slog.Logger
	stripeKey string
	now       func() time.Time
}

// New constructs a Service. An empty stripeKey disables intent creation.
func New(users repository.UserRepository, logger *slog.Logger, stripeKey string) Service {
	if stripeKey != "" {
		stripe.Key = stripeKey
	}
	return Service{users: users, logger: logger, stripeKey: stripeKey, now: time.Now}
}

// AddPaymentInput carries the card form fields. The raw card number and
// CVV never leave this package: the stored record keeps a masked number
// and the last four digits only.
type AddPaymentInput struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	CardNumber          string `json:"cardNumber"`
	SecurityCode        string `json:"securityCode"`
	ExpMonth            int    `json:"expMonth"`
	ExpYear             int    `json:"expYear"`
	UseDifferentBilling bool   `json:"useDifferentBilling"`
	BillingCountry      string `json:"billingCountry"`
	BillingAddress      string `json:"billingAddress"`
	BillingCity         string `json:"billingCity"`
	BillingState        string `json:"billingState"`
	BillingZip          string `json:"billingZip"`
}

// AddPayment validates and stores a payment method. The first method on
// an aggregate becomes the default.
func (s Service) AddPayment(ctx context.Context, userID string, input AddPaymentInput) (domain.Payment, error) {
	if input.FirstName == "" || input.LastName == "" || input.CardNumber == "" ||
		input.SecurityCode == "" || input.ExpMonth == 0 || input.ExpYear == 0 {
		return domain.Payment{}, ErrMissingFields
	}
	digits := digitsOnly(input.CardNumber)
	if len(digits) < 13 || len(digits) > 19 {
		return domain.Payment{}, ErrInvalidCardNumber
	}
	if len(input.SecurityCode) < 3 || len(input.SecurityCode) > 4 {
		return domain.Payment{}, ErrInvalidSecurityCode
	}
	now := s.now()
	if input.ExpYear < now.Year() || (input.ExpYear == now.Year() && input.ExpMonth < int(now.Month())) {
		return domain.Payment{}, ErrCardExpired
	}

	payment := domain.Payment{
		ID:                  uuid.NewString(),
		FirstName:           input.FirstName,
		LastName:            input.LastName,
		CardNumber:          maskCardNumber(input.CardNumber),
		LastFour:            digits[len(digits)-4:],
		ExpMonth:            input.ExpMonth,
		ExpYear:             input.ExpYear,
		UseDifferentBilling: input.UseDifferentBilling,
		BillingCountry:      input.BillingCountry,
		BillingAddress:      input.BillingAddress,
		BillingCity:         input.BillingCity,
		BillingState:        input.BillingState,
		BillingZip:          input.BillingZip,
		CreatedAt:           now.UTC(),
	}
	stored, err := s.users.AddPayment(ctx, userID, payment)
	if err != nil {
		return domain.Payment{}, err
	}
	s.logger.Info("payment method added", "user_id", userID, "payment_id", stored.ID)
	return stored, nil
}

// ListPayments returns the user's stored payment methods.
func (s Service) ListPayments(ctx context.Context, userID string) ([]domain.Payment, error) {
	return s.users.ListPayments(ctx, userID)
}

// IntentInput carries the checkout fields for a Stripe payment intent.
type IntentInput struct {
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

// Intent is the subset of the Stripe payment intent the client needs to
// confirm the payment.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// CreatePaymentIntent opens an unconfirmed Stripe payment intent; the
// client confirms it with its own payment method.
func (s Service) CreatePaymentIntent(ctx context.Context, userID string, input IntentInput) (Intent, error) {
	if input.Amount == 0 {
		return Intent{}, ErrAmountRequired
	}
	if s.stripeKey == "" {
		return Intent{}, ErrStripeNotConfigured
	}
	currency := input.Currency
	if currency == "" {
		currency = "usd"
	}
	companyName := input.Metadata["company_name"]
	if companyName == "" {
		companyName = "Company"
	}
	entityType := input.Metadata["entity_type"]
	if entityType == "" {
		entityType = "Unknown"
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(input.Amount),
		Currency:    stripe.String(currency),
		Confirm:     stripe.Bool(false),
		Description: stripe.String("Business formation order - " + companyName),
	}
	params.Context = ctx
	if input.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(input.CustomerEmail)
	}
	params.AddMetadata("company_name", companyName)
	params.AddMetadata("entity_type", entityType)
	params.AddMetadata("user_id", userID)

	pi, err := paymentintent.New(params)
	if err != nil {
		s.logger.Error("payment intent failed", "user_id", userID, "error", err)
		return Intent{}, err
	}
	s.logger.Info("payment intent created", "user_id", userID, "intent_id", pi.ID)
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// maskCardNumber replaces every digit except the last four with '*',
// leaving separators in place.
func maskCardNumber(s string) string {
	remaining := len(digitsOnly(s))
	out := []rune(s)
	for i, r := range out {
		if !unicode.IsDigit(r) {
			continue
		}
		if remaining > 4 {
			out[i] = '*'
		}
		remaining--
	}
	return string(out)
}
