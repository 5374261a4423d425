package models

import "fmt"

// CartItemType identifies what kind of purchasable a cart line refers to.
type CartItemType string

const (
	CartItemProduct  CartItemType = "product"
	CartItemWorkshop CartItemType = "workshop"
	CartItemCourse   CartItemType = "course"
)

// CartItem represents a line in the shopping cart. Lines are keyed by
// UniqueID so the same catalog id can appear once per item type.
type CartItem struct {
	ID          int          `json:"id"`
	UniqueID    string       `json:"uniqueId"`
	Type        CartItemType `json:"type"`
	Title       string       `json:"title"`
	Price       float64      `json:"price"`
	Image       string       `json:"image,omitempty"`
	Quantity    int          `json:"quantity"`
	MaxQuantity int          `json:"maxQuantity,omitempty"`
}

// CartKey builds the composite identifier used to dedupe cart lines.
func CartKey(itemType CartItemType, id int) string {
	return fmt.Sprintf("%s-%d", itemType, id)
}

// Subtotal returns price times quantity for this line.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Validate checks the fields a cart line cannot do without.
func (i CartItem) Validate() error {
	switch i.Type {
	case CartItemProduct, CartItemWorkshop, CartItemCourse:
	default:
		return fmt.Errorf("%w: unknown cart item type %q", ErrInvalidInput, i.Type)
	}
	if i.ID <= 0 {
		return fmt.Errorf("%w: cart item id must be positive", ErrInvalidInput)
	}
	if i.Price < 0 {
		return fmt.Errorf("%w: cart item price cannot be negative", ErrInvalidInput)
	}
	return nil
}
