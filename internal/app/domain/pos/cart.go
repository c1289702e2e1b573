package pos

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

// ErrCartFrozen rejects cart edits while a card payment is open.
var ErrCartFrozen = fmt.Errorf("%w: finish or cancel the card payment first", models.ErrValidation)

type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

// Add increments the quantity of productID, appending it when new.
func (c *Cart) Add(productID uuid.UUID) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity++
			return
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: 1})
}

func (c *Cart) Remove(productID uuid.UUID) {
	c.Items = slices.DeleteFunc(c.Items, func(it CartItem) bool { return it.ProductID == productID })
}

func (c Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	return ids
}

func (c Cart) Empty() bool { return len(c.Items) == 0 }

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PendingCard is a card payment opened for the cart and not yet booked as a
// sale. While it exists the cart is frozen.
type PendingCard struct {
	IntentID string
	Amount   int64
}

// CartState is what the register holds for one cashier between requests.
type CartState struct {
	Cart     Cart
	Customer Customer
	Pending  *PendingCard
}
