package domain

import "time"

// AttorneyInfo is an append-only attorney contact record. When
// NotifyAttorney is set the contact fields were validated at intake.
type AttorneyInfo struct {
	ID                string    `json:"id"`
	NotifyAttorney    bool      `json:"notifyAttorney"`
	AttorneyEmail     string    `json:"attorneyEmail,omitempty"`
	AttorneyFirstName string    `json:"attorneyFirstName,omitempty"`
	AttorneyLastName  string    `json:"attorneyLastName,omitempty"`
	AttorneyPhone     string    `json:"attorneyPhone,omitempty"`
	AttorneyFirm      string    `json:"attorneyFirm,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	IsDefault         bool      `json:"isDefault"`
}

// BusinessIdentity is an append-only business identity services order
// (domain, hosting, phone, supplies). Orders start in status "pending".
type BusinessIdentity struct {
	ID               string    `json:"id"`
	DomainName       string    `json:"domainName,omitempty"`
	DomainExtension  string    `json:"domainExtension"`
	WebsiteHosting   bool      `json:"websiteHosting"`
	BusinessEmail    string    `json:"businessEmail,omitempty"`
	PhoneNumber      string    `json:"phoneNumber,omitempty"`
	PhoneAreaCode    string    `json:"phoneAreaCode,omitempty"`
	BusinessSupplies bool      `json:"businessSupplies"`
	SuppliesType     string    `json:"suppliesType,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	Status           string    `json:"status"`
}

// StatusPending is the initial status of every business identity order.
const StatusPending = "pending"
