package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
)

func TestLoggingAttachesRequestIDAndKeepsBody(t *testing.T) {
	var output bytes.Buffer
	base := zerolog.New(&output).Level(zerolog.TraceLevel)
	var seenID, seenBody string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = log.RequestIDFromContext(r.Context())
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seenBody = string(body)
		zerolog.Ctx(r.Context()).Info().Msg("handled")
	}))

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"id":2,"name":"Kablosuz Kulaklık"}`))
	req = req.WithContext(base.WithContext(req.Context()))
	req.Header.Set(inHttp.HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-1", seenID)
	assert.Equal(t, `{"id":2,"name":"Kablosuz Kulaklık"}`, seenBody)
	assert.Equal(t, "req-1", rec.Header().Get(inHttp.HeaderRequestID))
	assert.Contains(t, output.String(), `"requestId":"req-1"`)
}

func TestLoggingGeneratesRequestID(t *testing.T) {
	var seenID string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = log.RequestIDFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cart/count", nil))

	assert.NotEmpty(t, seenID)
}

func TestRecoverPanic(t *testing.T) {
	tests := []struct {
		name  string
		panic interface{}
	}{
		{name: "given error panic should write 500", panic: io.ErrUnexpectedEOF},
		{name: "given string panic should write 500", panic: "boom"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handler := RecoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic(test.panic)
			}))
			rec := httptest.NewRecorder()

			assert.NotPanics(t, func() {
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
			})

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			body := map[string]interface{}{}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, inHttp.StatusFailed, body["status"])
		})
	}
}
