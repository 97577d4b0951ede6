package cart

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

// Persister stores the item list somewhere that outlives the process. Neither
// method reports failure: persistence degrades, the in-memory cart does not.
type Persister interface {
	Save(c context.Context, items []LineItem)
	Load(c context.Context) []LineItem
}

// Store owns the cart State and is the only way to mutate it. Each operation
// runs to completion under the store lock, including the persist and the
// change broadcast that follows it, so observers never see a half-applied
// operation. Handlers reached from that broadcast must not call back into the
// same Store.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
}

func NewStore(persister Persister) *Store {
	return &Store{
		state:     State{Items: []LineItem{}, TotalPrice: TotalPrice(nil)},
		persister: persister,
	}
}

// State returns a copy that is safe to keep after the store changes.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	state.Items = cloneItems(s.state.Items)
	return state
}

// AddItem increments the quantity of an existing line or appends a new line
// with quantity 1.
func (s *Store) AddItem(c context.Context, product Product) {
	c, span := otel.Tracer.Start(c, "Store AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store AddItem").
		Int(log.KeyProductID, product.ID).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "adding item").Logger()
	logger.Debug().Msg("adding item")
	if i := s.state.indexOf(product.ID); i >= 0 {
		s.state.Items[i].Quantity++
		logger.Debug().Int(log.KeyQuantity, s.state.Items[i].Quantity).Msg("incremented item")
	} else {
		s.state.Items = append(s.state.Items, product.lineItem(1))
		logger.Debug().Int(log.KeyQuantity, 1).Msg("appended item")
	}
	s.state.recompute()
	s.state.Error = ""

	c = logger.WithContext(c)
	s.commit(c, "add_item")
}

// RemoveItem deletes the line with id. Removing an absent id leaves the items
// untouched but still persists them.
func (s *Store) RemoveItem(c context.Context, id int) {
	c, span := otel.Tracer.Start(c, "Store RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store RemoveItem").
		Int(log.KeyProductID, id).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	c = logger.WithContext(c)
	s.remove(c, id)
}

// SetQuantity sets an absolute quantity. A quantity of zero or less removes
// the line; an absent id is ignored entirely.
func (s *Store) SetQuantity(c context.Context, id int, quantity int) {
	c, span := otel.Tracer.Start(c, "Store SetQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store SetQuantity").
		Int(log.KeyProductID, id).
		Int(log.KeyQuantity, quantity).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.indexOf(id)
	if i < 0 {
		logger.Debug().Msg("item not in cart, ignoring")
		return
	}

	c = logger.WithContext(c)
	if quantity <= 0 {
		s.remove(c, id)
		return
	}

	s.state.Items[i].Quantity = quantity
	s.state.recompute()
	s.commit(c, "set_quantity")
}

func (s *Store) Clear(c context.Context) {
	c, span := otel.Tracer.Start(c, "Store Clear")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Store Clear").Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.replaceItems(nil)

	c = logger.WithContext(c)
	s.commit(c, "clear")
}

// Replace swaps the whole item list in one operation. Lines sharing an id
// merge into the first one seen, with their quantities summed; lines with a
// quantity of zero or less are skipped. The result persists and broadcasts
// once.
func (s *Store) Replace(c context.Context, items []LineItem) {
	c, span := otel.Tracer.Start(c, "Store Replace")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store Replace").
		Int(log.KeyCartItemsCount, len(items)).
		Logger()

	merged := []LineItem{}
	positions := map[int]int{}
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := positions[item.ID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		positions[item.ID] = len(merged)
		merged = append(merged, item)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.replaceItems(merged)
	if len(merged) > 0 {
		s.state.Error = ""
	}
	logger.Debug().Int(log.KeyCartTotalItems, s.state.TotalItems).Msg("replaced items")

	c = logger.WithContext(c)
	s.commit(c, "replace")
}

// Reload replaces the items with whatever is persisted. It reads through and
// never writes back.
func (s *Store) Reload(c context.Context) {
	c, span := otel.Tracer.Start(c, "Store Reload")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store Reload").
		Str(log.KeyProcess, "reloading cart").
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug().Msg("reloading cart")
	c = logger.WithContext(c)
	s.state.replaceItems(s.persister.Load(c))
	operations.WithLabelValues("reload").Inc()
	logger.Debug().
		Int(log.KeyCartTotalItems, s.state.TotalItems).
		Str(log.KeyCartTotalPrice, s.state.TotalPrice.String()).
		Msg("reloaded cart")
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = loading
}

// SetError sets the error flag shown by the UI; an empty message clears it.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = message
}

// remove must be called with s.mu held.
func (s *Store) remove(c context.Context, id int) {
	kept := s.state.Items[:0:0]
	for _, item := range s.state.Items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.state.replaceItems(kept)
	s.commit(c, "remove_item")
}

// commit must be called with s.mu held.
func (s *Store) commit(c context.Context, operation string) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "persisting cart").
		Int(log.KeyCartTotalItems, s.state.TotalItems).
		Str(log.KeyCartTotalPrice, s.state.TotalPrice.String()).
		Logger()

	operations.WithLabelValues(operation).Inc()
	logger.Debug().Msg("persisting cart")
	s.persister.Save(logger.WithContext(c), cloneItems(s.state.Items))
	logger.Debug().Msg("persisted cart")
}
