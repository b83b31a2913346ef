// Package models defines the core data structures for carts and users.
package models

// LineItem is a single product entry in a cart. Identity is ProductID:
// a cart never holds two line items with the same ProductID.
type LineItem struct {
	// ProductID is the unique identifier of the product.
	ProductID string `json:"productId"`
	// Title is the display name of the product.
	Title string `json:"title"`
	// ImageURL points to the product image.
	ImageURL string `json:"imageUrl"`
	// UnitPrice is the price of a single unit.
	UnitPrice float64 `json:"unitPrice"`
	// Quantity is the number of units, always > 0 in a stored cart.
	Quantity int `json:"quantity"`
	// StockCap is an advisory upper bound on Quantity. Zero means
	// unbounded; the server remains authoritative at checkout.
	StockCap int `json:"stockCap,omitempty"`
}

// Cart is an ordered sequence of line items representing the cart at
// one instant.
type Cart []LineItem

// ClampQuantity bounds qty to the advisory stock cap. A cap of zero
// means unbounded.
func ClampQuantity(qty, cap int) int {
	if cap > 0 && qty > cap {
		return cap
	}
	return qty
}

// Find returns the index of the line item with the given product ID,
// or -1 if the cart has none.
func (c Cart) Find(productID string) int {
	for i := range c {
		if c[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the cart. Mutating the copy never
// affects the original.
func (c Cart) Clone() Cart {
	if c == nil {
		return nil
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Total returns the sum of unit price times quantity over all items.
func (c Cart) Total() float64 {
	var total float64
	for i := range c {
		total += c[i].UnitPrice * float64(c[i].Quantity)
	}
	return total
}

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Login is the login name chosen by the user.
	Login string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
}
