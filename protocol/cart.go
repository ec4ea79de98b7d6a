package protocol

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxLineQuantity is the largest quantity of a single Cart line.
const MaxLineQuantity = 99

// CartKey identifies a Cart. A Cart belongs to either a logged-in User
// (UserID is set) or a guest visitor identified by a client-generated UUID
// token (CartID is set). Exactly one of UserID or CartID is set.
type CartKey struct {
	UserID ObjectID
	CartID string
}

// Validate returns an error if the CartKey is not well-formed.
func (k CartKey) Validate() error {
	if k.UserID != "" && k.CartID != "" {
		return NewValidationError("cart key cannot have both a user and a cart id")
	} else if k.UserID != "" {
		return ExtendContext(k.UserID.Validate(), "userId")
	} else if k.CartID == "" {
		return NewValidationError("cart key missing")
	} else if err := ValidateCartID(k.CartID); err != nil {
		return ExtendContext(err, "cartId")
	}
	return nil
}

// IsGuest returns true if the CartKey is of a guest visitor.
func (k CartKey) IsGuest() bool { return k.UserID == "" }

// String returns a loggable representation of the CartKey.
func (k CartKey) String() string {
	if k.UserID != "" {
		return "user:" + string(k.UserID)
	}
	return "guest:" + k.CartID
}

// ValidateCartID returns an error if |s| is not a UUID.
func ValidateCartID(s string) error {
	if _, err := uuid.Parse(s); err != nil || len(s) != 36 {
		return NewValidationError("X-Cart-Id must be a valid UUID")
	}
	return nil
}

// NewCartID returns a new random (v4) guest cart token.
func NewCartID() string { return uuid.NewString() }

// CartLine is a stored line of a Cart.
type CartLine struct {
	ItemID ObjectID `json:"item"`
	Qty    int      `json:"qty"`
}

// Cart is a stored shopping cart.
type Cart struct {
	ID        ObjectID
	UserID    ObjectID
	CartID    string
	Lines     []CartLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the CartKey of the Cart.
func (c *Cart) Key() CartKey { return CartKey{UserID: c.UserID, CartID: c.CartID} }

// LineIndex returns the index of the line of |itemID|, or -1.
func (c *Cart) LineIndex(itemID ObjectID) int {
	for i, l := range c.Lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

// AddQuantity adds |qty| units of |itemID| to the Cart. If a line of the item
// exists its quantity is increased, and otherwise a line is appended. Line
// quantities are capped at MaxLineQuantity.
func (c *Cart) AddQuantity(itemID ObjectID, qty int) {
	if qty < 1 {
		qty = 1
	}
	if ind := c.LineIndex(itemID); ind != -1 {
		c.Lines[ind].Qty = clampQuantity(c.Lines[ind].Qty + qty)
	} else {
		c.Lines = append(c.Lines, CartLine{ItemID: itemID, Qty: clampQuantity(qty)})
	}
}

// SetQuantity sets the quantity of the existing line of |itemID|, removing
// it if |qty| is not positive, and otherwise clamping it to MaxLineQuantity.
// It returns false if the Cart has no line of |itemID|.
func (c *Cart) SetQuantity(itemID ObjectID, qty int) bool {
	var ind = c.LineIndex(itemID)
	if ind == -1 {
		return false
	} else if qty <= 0 {
		c.RemoveLine(itemID)
	} else {
		c.Lines[ind].Qty = clampQuantity(qty)
	}
	return true
}

// RemoveLine removes the line of |itemID|, if present.
func (c *Cart) RemoveLine(itemID ObjectID) {
	var out = c.Lines[:0]
	for _, l := range c.Lines {
		if l.ItemID != itemID {
			out = append(out, l)
		}
	}
	c.Lines = out
}

func clampQuantity(q int) int {
	if q < 1 {
		return 1
	} else if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}

// CartView is the client-facing presentation of a Cart, with lines
// populated by their Items.
type CartView struct {
	ID        ObjectID       `json:"id"`
	UserID    ObjectID       `json:"userId,omitempty"`
	CartID    string         `json:"cartId,omitempty"`
	Items     []CartViewLine `json:"items"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// CartViewLine is a populated line of a CartView.
type CartViewLine struct {
	Item ItemSummary `json:"item"`
	Qty  int         `json:"qty"`
}

// AddToCartRequest is the body of POST /api/cart/add.
type AddToCartRequest struct {
	ItemID   *string `json:"itemId"`
	Quantity *int    `json:"quantity,omitempty"`
}

// Normalize trims the ItemID, and defaults an absent Quantity to one.
func (m *AddToCartRequest) Normalize() {
	if m.ItemID != nil {
		var id = strings.TrimSpace(*m.ItemID)
		m.ItemID = &id
	}
	if m.Quantity == nil {
		var q = 1
		m.Quantity = &q
	}
}

// Validate returns an error if the AddToCartRequest is not well-formed.
func (m *AddToCartRequest) Validate() error {
	var errs ValidationErrors

	if m.ItemID == nil {
		errs.Addf("itemId", errRequired)
	} else if !IsValidObjectID(*m.ItemID) {
		errs.Addf("itemId", "Invalid itemId (must be a 24 character hex id)")
	}
	if m.Quantity != nil {
		errs.Add("quantity", validateQuantity(*m.Quantity))
	}
	return errs.OrNil()
}

// UpdateQuantityRequest is the body of PATCH /api/cart/item/{itemId}.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// Validate returns an error if the UpdateQuantityRequest is not well-formed.
func (m *UpdateQuantityRequest) Validate() error {
	var errs ValidationErrors

	if m.Quantity == nil {
		errs.Addf("quantity", errRequired)
	} else {
		errs.Add("quantity", validateQuantity(*m.Quantity))
	}
	return errs.OrNil()
}

func validateQuantity(q int) error {
	if q < 1 {
		return NewValidationError("Quantity must be at least 1")
	} else if q > MaxLineQuantity {
		return NewValidationError("Quantity too large")
	}
	return nil
}
