package domain

import "time"

// StatusActive is the only account status assigned today. Accounts are
// never deleted, only created and mutated in place.
const StatusActive = "active"

// UserAggregate is the per-account root record. Every nested collection
// is owned by composition: reads and writes always go through the whole
// aggregate.
type UserAggregate struct {
	ID               string             `json:"id"`
	FirstName        string             `json:"firstName"`
	LastName         string             `json:"lastName"`
	Email            string             `json:"email"`
	PasswordHash     []byte             `json:"passwordHash,omitempty"`
	Phone            string             `json:"phone,omitempty"`
	Country          string             `json:"country,omitempty"`
	Address          string             `json:"address,omitempty"`
	City             string             `json:"city,omitempty"`
	State            string             `json:"state,omitempty"`
	ZipCode          string             `json:"zipCode,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	Status           string             `json:"status"`
	Companies        []Company          `json:"companies"`
	Payments         []Payment          `json:"payments"`
	Attorneys        []AttorneyInfo     `json:"attorneys"`
	BusinessIdentity []BusinessIdentity `json:"businessIdentity"`
	Cart             []CartItem         `json:"cart"`
}

// Contact is the projection returned by account listings. It never
// carries credentials or nested collections.
type Contact struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Country   string    `json:"country,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	ZipCode   string    `json:"zipCode,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status"`
}

// ContactCard returns the listing projection of the aggregate.
func (u *UserAggregate) ContactCard() Contact {
	return Contact{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Country:   u.Country,
		Address:   u.Address,
		City:      u.City,
		State:     u.State,
		ZipCode:   u.ZipCode,
		CreatedAt: u.CreatedAt,
		Status:    u.Status,
	}
}

// Clone returns a deep copy of the aggregate. The in-memory store hands
// out clones so callers can never mutate stored state without going
// through a store operation.
func (u *UserAggregate) Clone() *UserAggregate {
	clone := *u
	clone.PasswordHash = append([]byte(nil), u.PasswordHash...)
	clone.Companies = append([]Company(nil), u.Companies...)
	clone.Payments = append([]Payment(nil), u.Payments...)
	clone.Attorneys = append([]AttorneyInfo(nil), u.Attorneys...)
	clone.BusinessIdentity = append([]BusinessIdentity(nil), u.BusinessIdentity...)
	clone.Cart = append([]CartItem(nil), u.Cart...)
	return &clone
}

// AddPayment appends a payment method and returns the record as stored.
// The first method stored on an aggregate is always flagged default;
// later ones keep whatever flag the caller set. Nothing re-flags a
// default today, there is no payment removal operation.
func (u *UserAggregate) AddPayment(p Payment) Payment {
	if len(u.Payments) == 0 {
		p.IsDefault = true
	}
	u.Payments = append(u.Payments, p)
	return p
}

// AddCompany appends a company record. Companies are append-only locally;
// the formation API stays authoritative for mutation.
func (u *UserAggregate) AddCompany(c Company) {
	u.Companies = append(u.Companies, c)
}

// OwnsCompany reports whether a company id was recorded on this aggregate.
func (u *UserAggregate) OwnsCompany(companyID string) bool {
	for _, c := range u.Companies {
		if c.ID == companyID {
			return true
		}
	}
	return false
}
