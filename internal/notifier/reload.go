package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
)

type Reloader interface {
	Reload(c context.Context)
}

// ReloadOnRemote re-reads the persisted cart whenever another process
// reports a change. Events from origin itself are ignored, which also keeps
// the handler from re-entering a store that is broadcasting its own change.
func ReloadOnRemote(origin string, reloader Reloader) Handler {
	return func(c context.Context, ev Event) {
		if ev.Origin == origin {
			return
		}
		zerolog.Ctx(c).Debug().
			Str(log.KeyTag, "ReloadOnRemote").
			Str(log.KeyOrigin, ev.Origin).
			Msg("remote cart change, reloading")
		reloader.Reload(c)
	}
}
