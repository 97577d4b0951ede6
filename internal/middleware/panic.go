package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/otel"
)

func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, span := otel.Tracer.Start(r.Context(), "RecoverPanic")
		defer span.End()

		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			err, ok := recovered.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", recovered)
			}
			zerolog.Ctx(c).Error().Err(err).Stack().Msg("recovered from panic")
			otel.RecordError(err, span)
			inHttp.WriteFailed(c, w, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		}()

		next.ServeHTTP(w, r.WithContext(c))
	})
}
