package notifier

import (
	"github.com/Alturino/storefront/internal/cart"
)

// Event announces that the cart changed. Origin names the process whose
// store made the change so a relay can tell local events from remote ones.
type Event struct {
	Origin string          `json:"origin,omitempty"`
	Items  []cart.LineItem `json:"items"`
	Count  int             `json:"count"`
}

func NewEvent(origin string, items []cart.LineItem) Event {
	if items == nil {
		items = []cart.LineItem{}
	}
	return Event{Origin: origin, Items: items, Count: cart.TotalItems(items)}
}
