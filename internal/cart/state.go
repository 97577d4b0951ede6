package cart

import "github.com/shopspring/decimal"

// State is the cart aggregate. TotalItems and TotalPrice are always derived
// from Items; Loading and Error are transient UI flags.
type State struct {
	Items      []LineItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Loading    bool            `json:"loading"`
	Error      string          `json:"error,omitempty"`
}

func (s *State) replaceItems(items []LineItem) {
	if items == nil {
		items = []LineItem{}
	}
	s.Items = items
	s.recompute()
}

func (s *State) recompute() {
	s.TotalItems = TotalItems(s.Items)
	s.TotalPrice = TotalPrice(s.Items)
}

func (s *State) indexOf(id int) int {
	for i, item := range s.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
