package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/cart"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

// Transport carries encoded events between processes.
type Transport interface {
	Publish(c context.Context, payload []byte) error
	// Receive blocks, calling deliver for every payload, until c is done or
	// the transport fails.
	Receive(c context.Context, deliver func(c context.Context, payload []byte)) error
	Close() error
}

const outboxSize = 64

// Relay joins a local Bus to a Transport. Events whose origin is this
// process go out; events from any other origin come back in and are
// broadcast on the Bus. Echoes of our own events are dropped.
type Relay struct {
	bus       *Bus
	transport Transport
	origin    string
	outbox    chan Event
}

func NewRelay(bus *Bus, transport Transport, origin string) *Relay {
	return &Relay{
		bus:       bus,
		transport: transport,
		origin:    origin,
		outbox:    make(chan Event, outboxSize),
	}
}

// Run subscribes to the bus and moves events until c is done.
func (r *Relay) Run(c context.Context) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Relay Run").
		Str(log.KeyOrigin, r.origin).
		Logger()
	c = logger.WithContext(c)

	unsubscribe := r.bus.Subscribe(r.enqueue)
	defer unsubscribe()

	publishCtx, cancel := context.WithCancel(c)
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.publishLoop(publishCtx)
	}()

	logger.Info().Str(log.KeyProcess, "receiving events").Msg("receiving events")
	err := r.transport.Receive(c, r.deliver)
	cancel()
	wg.Wait()
	if err != nil && c.Err() == nil {
		err = fmt.Errorf("failed receiving cart events with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("relay stopped")
	return nil
}

// enqueue runs inside the store's critical section, so it never blocks on
// the network. A full outbox loses its oldest event; the newest cart state
// always goes out.
func (r *Relay) enqueue(c context.Context, ev Event) {
	if ev.Origin != r.origin {
		return
	}
	for {
		select {
		case r.outbox <- ev:
			return
		default:
		}
		select {
		case stale := <-r.outbox:
			relayFailures.WithLabelValues("coalesced").Inc()
			zerolog.Ctx(c).Debug().
				Str(log.KeyTag, "Relay enqueue").
				Int(log.KeyCartItemsCount, stale.Count).
				Msg("relay outbox full, replacing oldest cart event")
		default:
		}
	}
}

func (r *Relay) publishLoop(c context.Context) {
	for {
		select {
		case <-c.Done():
			return
		case ev := <-r.outbox:
			r.publish(c, ev)
		}
	}
}

func (r *Relay) publish(c context.Context, ev Event) {
	c, span := otel.Tracer.Start(c, "Relay publish")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "publishing event").
		Int(log.KeyCartItemsCount, ev.Count).
		Logger()

	payload, err := json.Marshal(ev)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart event with error=%w", err)
		otel.RecordError(err, span)
		relayFailures.WithLabelValues("encode").Inc()
		logger.Error().Err(err).Msg(err.Error())
		return
	}

	logger.Debug().Msg("publishing event")
	if err := r.transport.Publish(c, payload); err != nil {
		err = fmt.Errorf("failed publishing cart event with error=%w", err)
		otel.RecordError(err, span)
		relayFailures.WithLabelValues("publish").Inc()
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	relayed.WithLabelValues("out").Inc()
	logger.Debug().Msg("published event")
}

func (r *Relay) deliver(c context.Context, payload []byte) {
	c, span := otel.Tracer.Start(c, "Relay deliver")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "delivering event").Logger()

	ev := Event{}
	if err := json.Unmarshal(payload, &ev); err != nil {
		err = fmt.Errorf("failed unmarshaling cart event with error=%w", err)
		otel.RecordError(err, span)
		relayFailures.WithLabelValues("decode").Inc()
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	if ev.Origin == r.origin {
		logger.Trace().Msg("dropping own echo")
		return
	}
	if ev.Items == nil {
		ev.Items = []cart.LineItem{}
	}

	relayed.WithLabelValues("in").Inc()
	logger.Debug().Str(log.KeyOrigin, ev.Origin).Int(log.KeyCartItemsCount, ev.Count).Msg("broadcasting remote event")
	r.bus.Broadcast(logger.WithContext(c), ev)
}
