// Package persistence mirrors the cart items into shared storage and
// announces every write on the notifier.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/cart"
	"github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/notifier"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/storage"
)

// KeyCartItems is the storage key both zones read and write.
const KeyCartItems = "cart-items"

var failures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "storefront",
	Subsystem: "persistence",
	Name:      "failures_total",
	Help:      "Cart reads and writes that fell back to an empty or unsaved cart.",
}, []string{"operation", "reason"})

type Broadcaster interface {
	Broadcast(c context.Context, ev notifier.Event)
}

type Bridge struct {
	storage  storage.Storage
	notifier Broadcaster
	origin   string
}

func NewBridge(st storage.Storage, bus Broadcaster, origin string) *Bridge {
	return &Bridge{storage: st, notifier: bus, origin: origin}
}

// Save writes items under KeyCartItems and then broadcasts them. The
// broadcast happens even when the write fails, so the zones in this process
// stay in step with the store.
func (b *Bridge) Save(c context.Context, items []cart.LineItem) {
	c, span := otel.Tracer.Start(c, "Bridge Save")
	defer span.End()

	if items == nil {
		items = []cart.LineItem{}
	}
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Bridge Save").
		Str(log.KeyStorageKey, KeyCartItems).
		Int(log.KeyCartItemsCount, len(items)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "marshaling items").Logger()
	blob, err := json.Marshal(items)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart items with error=%w", err)
		otel.RecordError(err, span)
		failures.WithLabelValues("save", "encode").Inc()
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger = logger.With().Str(log.KeyProcess, "writing items").Logger()
		logger.Debug().Msg("writing items")
		if err := b.storage.Set(c, KeyCartItems, string(blob)); err != nil {
			err = fmt.Errorf("failed writing cart items with error=%w", err)
			otel.RecordError(err, span)
			failures.WithLabelValues("save", "storage").Inc()
			logger.Error().Err(err).Msg(err.Error())
		} else {
			logger.Debug().Msg("wrote items")
		}
	}

	logger = logger.With().Str(log.KeyProcess, "broadcasting items").Logger()
	b.notifier.Broadcast(logger.WithContext(c), notifier.NewEvent(b.origin, items))
	logger.Debug().Msg("broadcasted items")
}

// Load returns the persisted items. A missing key, a storage failure and an
// unreadable blob all yield an empty list; lines with a quantity of zero or
// less and repeated ids are skipped.
func (b *Bridge) Load(c context.Context) []cart.LineItem {
	c, span := otel.Tracer.Start(c, "Bridge Load")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Bridge Load").
		Str(log.KeyStorageKey, KeyCartItems).
		Str(log.KeyProcess, "reading items").
		Logger()

	logger.Debug().Msg("reading items")
	blob, ok, err := b.storage.Get(c, KeyCartItems)
	if err != nil {
		err = fmt.Errorf("failed reading cart items with error=%w", err)
		otel.RecordError(err, span)
		failures.WithLabelValues("load", "storage").Inc()
		logger.Error().Err(err).Msg(err.Error())
		return []cart.LineItem{}
	}
	if !ok {
		logger.Debug().Msg("no persisted items")
		return []cart.LineItem{}
	}

	logger = logger.With().Str(log.KeyProcess, "unmarshaling items").Logger()
	items := []cart.LineItem{}
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		err = fmt.Errorf("%w: %w", errors.ErrMalformedCart, err)
		otel.RecordError(err, span)
		failures.WithLabelValues("load", "malformed").Inc()
		logger.Error().Err(err).Msg(err.Error())
		return []cart.LineItem{}
	}

	items = sanitize(items)
	logger.Debug().Int(log.KeyCartItemsCount, len(items)).Msg("read items")
	return items
}

func sanitize(items []cart.LineItem) []cart.LineItem {
	kept := make([]cart.LineItem, 0, len(items))
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if item.Quantity <= 0 || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		kept = append(kept, item)
	}
	return kept
}
