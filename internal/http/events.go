package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/notifier"
)

const eventName = "cart-updated"

const eventBuffer = 16

// ServeEvents streams every bus broadcast to the client as a server-sent
// event named cart-updated until the request is cancelled. A slow client
// loses its oldest pending events rather than holding up the broadcaster.
func ServeEvents(bus *notifier.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := r.Context()
		logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ServeEvents").Logger()

		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteFailed(c, w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
			return
		}

		events := make(chan notifier.Event, eventBuffer)
		unsubscribe := bus.Subscribe(func(c context.Context, ev notifier.Event) {
			if offerLatest(events, ev) {
				zerolog.Ctx(c).Debug().Str(log.KeyTag, "ServeEvents").Msg("event stream full, replaced oldest cart event")
			}
		})
		defer unsubscribe()

		w.Header().Set(HeaderContentType, ValueEventStream)
		w.Header().Set(HeaderCacheControl, "no-cache")
		w.Header().Set(HeaderConnection, "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		logger.Info().Msg("streaming cart events")
		for {
			select {
			case <-c.Done():
				logger.Info().Msg("client disconnected")
				return
			case ev := <-events:
				payload, err := json.Marshal(ev)
				if err != nil {
					logger.Error().Err(err).Msg(err.Error())
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName, payload); err != nil {
					logger.Debug().Err(err).Msg("failed writing event")
					return
				}
				flusher.Flush()
			}
		}
	}
}

// offerLatest queues ev without blocking, evicting the oldest queued events
// when the channel is full. It reports whether anything was evicted.
func offerLatest(events chan notifier.Event, ev notifier.Event) bool {
	evicted := false
	for {
		select {
		case events <- ev:
			return evicted
		default:
		}
		select {
		case <-events:
			evicted = true
		default:
		}
	}
}
