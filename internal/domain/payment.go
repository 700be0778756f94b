package domain

import "time"

// Payment is a card-on-file record. The card number is stored masked with
// only the last four digits readable, and the CVV is never stored at all.
type Payment struct {
	ID                  string    `json:"id"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	CardNumber          string    `json:"cardNumber"`
	LastFour            string    `json:"lastFour"`
	ExpMonth            int       `json:"expMonth"`
	ExpYear             int       `json:"expYear"`
	UseDifferentBilling bool      `json:"useDifferentBilling"`
	BillingCountry      string    `json:"billingCountry,omitempty"`
	BillingAddress      string    `json:"billingAddress,omitempty"`
	BillingCity         string    `json:"billingCity,omitempty"`
	BillingState        string    `json:"billingState,omitempty"`
	BillingZip          string    `json:"billingZip,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	IsDefault           bool      `json:"isDefault"`
}
