// Package zone assembles the cart runtime one storefront process needs: the
// store, its persistence bridge, the local bus and, when configured, the
// relay to the other zones.
package zone

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/cart"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/handoff"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/notifier"
	"github.com/Alturino/storefront/internal/persistence"
	"github.com/Alturino/storefront/internal/storage"
)

type Zone struct {
	Origin string
	Store  *cart.Store
	Bus    *notifier.Bus
	Signer *handoff.Signer

	relay     *notifier.Relay
	transport notifier.Transport
}

// New builds a zone on st. A nil transport keeps events inside the process.
func New(c context.Context, st storage.Storage, transport notifier.Transport, origin string) *Zone {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "zone New").
		Str(log.KeyOrigin, origin).
		Logger()
	c = logger.WithContext(c)

	bus := notifier.NewBus()
	store := cart.NewStore(persistence.NewBridge(st, bus, origin))

	logger = logger.With().Str(log.KeyProcess, "hydrating cart").Logger()
	logger.Info().Msg("hydrating cart")
	store.Reload(c)
	logger.Info().Int(log.KeyCartTotalItems, store.State().TotalItems).Msg("hydrated cart")

	z := &Zone{Origin: origin, Store: store, Bus: bus, transport: transport}
	if transport != nil {
		z.relay = notifier.NewRelay(bus, transport, origin)
		bus.Subscribe(notifier.ReloadOnRemote(origin, store))
	}
	return z
}

// Boot resolves storage and transport from cfg and builds the zone.
func Boot(c context.Context, appName string, cfg *config.Config) (*Zone, error) {
	processID := uuid.New()
	origin := fmt.Sprintf("%s-%s", appName, processID.String())

	st, err := infra.NewStorage(c, cfg, processID)
	if err != nil {
		return nil, err
	}
	transport, err := infra.NewTransport(c, cfg, appName)
	if err != nil {
		return nil, err
	}

	z := New(c, st, transport, origin)
	if cfg.Application.SecretKey != "" {
		z.Signer = handoff.NewSigner(cfg.Application.SecretKey, cfg.Handoff.TTL)
	}
	return z, nil
}

// Run relays events until c is done. Without a transport it just waits.
func (z *Zone) Run(c context.Context) error {
	if z.relay == nil {
		<-c.Done()
		return nil
	}
	return z.relay.Run(c)
}

func (z *Zone) Close() error {
	if z.transport == nil {
		return nil
	}
	return z.transport.Close()
}
