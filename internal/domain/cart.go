package domain

import "time"

// CartItem is one line of the user's shopping cart. At most one item per
// ServiceID exists within an aggregate; duplicate inserts merge by
// quantity instead of creating a second row.
type CartItem struct {
	ID          string    `json:"id"`
	ServiceID   string    `json:"serviceId"`
	ServiceName string    `json:"serviceName"`
	ServiceType string    `json:"serviceType,omitempty"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	AddedAt     time.Time `json:"addedAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// AddCartItem inserts item into the cart. An existing line with the same
// ServiceID absorbs the incoming quantity and gets its update stamp
// refreshed; otherwise the item is appended as given.
func (u *UserAggregate) AddCartItem(item CartItem, now time.Time) {
	for i := range u.Cart {
		if u.Cart[i].ServiceID == item.ServiceID {
			u.Cart[i].Quantity += item.Quantity
			u.Cart[i].UpdatedAt = now
			return
		}
	}
	u.Cart = append(u.Cart, item)
}

// SetCartQuantity updates the quantity of the cart line with the given id.
// Quantity zero removes the line entirely; update and delete are unified
// through quantity. Returns false when no line matches.
func (u *UserAggregate) SetCartQuantity(itemID string, quantity int, now time.Time) bool {
	for i := range u.Cart {
		if u.Cart[i].ID != itemID {
			continue
		}
		if quantity == 0 {
			u.Cart = append(u.Cart[:i], u.Cart[i+1:]...)
			return true
		}
		u.Cart[i].Quantity = quantity
		u.Cart[i].UpdatedAt = now
		return true
	}
	return false
}

// RemoveCartItem deletes the cart line with the given id. Returns false
// when no line matches.
func (u *UserAggregate) RemoveCartItem(itemID string) bool {
	for i := range u.Cart {
		if u.Cart[i].ID == itemID {
			u.Cart = append(u.Cart[:i], u.Cart[i+1:]...)
			return true
		}
	}
	return false
}

// ClearCart empties the cart.
func (u *UserAggregate) ClearCart() {
	u.Cart = nil
}
