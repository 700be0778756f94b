package domain

import "time"

// Company is the local record of a company the user formed through the
// remote API. The id matches the remote system's id when the upstream
// response exposed one.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
