package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/cart"
	"github.com/Alturino/storefront/internal/handoff"
	"github.com/Alturino/storefront/internal/notifier"
	"github.com/Alturino/storefront/internal/persistence"
	"github.com/Alturino/storefront/internal/storage"
)

type fixture struct {
	router *mux.Router
	store  *cart.Store
	events *[]notifier.Event
}

func newFixture(signer *handoff.Signer) fixture {
	bus := notifier.NewBus()
	events := &[]notifier.Event{}
	bus.Subscribe(func(_ context.Context, ev notifier.Event) { *events = append(*events, ev) })
	store := cart.NewStore(persistence.NewBridge(storage.NewMemory(), bus, "home-zone-1"))
	router := mux.NewRouter()
	AttachHomeController(router, store, bus, signer, "http://localhost:8081/cart")
	return fixture{router: router, store: store, events: events}
}

func (f fixture) do(t *testing.T, method, target, body string) (int, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestAddItem(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedCode  int
		expectedCount int
	}{
		{name: "given valid product should add", body: `{"id":2,"name":"Kablosuz Kulaklık","category":"Aksesuar","price":"449,99 TL","imageUrl":"/placeholder.svg"}`, expectedCode: http.StatusOK, expectedCount: 1},
		{name: "given missing name should reject", body: `{"id":2,"price":"449,99 TL"}`, expectedCode: http.StatusBadRequest, expectedCount: 0},
		{name: "given unparseable price should reject", body: `{"id":2,"name":"Kablosuz Kulaklık","price":"bedava"}`, expectedCode: http.StatusBadRequest, expectedCount: 0},
		{name: "given malformed json should reject", body: `{"id":`, expectedCode: http.StatusBadRequest, expectedCount: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(nil)

			code, resp := f.do(t, http.MethodPost, "/cart/items", test.body)

			assert.Equal(t, test.expectedCode, code)
			assert.Equal(t, float64(test.expectedCode), resp["statusCode"])
			assert.Equal(t, test.expectedCount, f.store.State().TotalItems)
			assert.Len(t, *f.events, test.expectedCount)
		})
	}
}

func TestAddItemTwiceThenCount(t *testing.T) {
	f := newFixture(nil)
	body := `{"id":2,"name":"Kablosuz Kulaklık","price":"449,99 TL"}`
	f.do(t, http.MethodPost, "/cart/items", body)
	f.do(t, http.MethodPost, "/cart/items", body)
	f.do(t, http.MethodPost, "/cart/items", body)

	code, resp := f.do(t, http.MethodGet, "/cart/count", "")

	assert.Equal(t, http.StatusOK, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["totalItems"])
	assert.Equal(t, "1349.97", data["totalPrice"])
	require.Len(t, *f.events, 3)
	assert.Equal(t, 3, (*f.events)[2].Count)
}

func TestHandoff(t *testing.T) {
	items := []cart.LineItem{{ID: 2, Name: "Kablosuz Kulaklık", Price: "449,99 TL", Quantity: 2}}

	t.Run("given no signer should link with data", func(t *testing.T) {
		f := newFixture(nil)
		f.store.AddItem(context.Background(), cart.Product{ID: 2, Name: "Kablosuz Kulaklık", Price: "449,99 TL"})
		f.store.AddItem(context.Background(), cart.Product{ID: 2, Name: "Kablosuz Kulaklık", Price: "449,99 TL"})

		code, resp := f.do(t, http.MethodGet, "/cart/handoff", "")

		assert.Equal(t, http.StatusOK, code)
		link, err := url.Parse(resp["data"].(map[string]interface{})["url"].(string))
		require.NoError(t, err)
		assert.Equal(t, "localhost:8081", link.Host)
		decoded, err := handoff.Decode(link.Query().Get(handoff.ParamData))
		require.NoError(t, err)
		assert.Equal(t, items, decoded)
	})

	t.Run("given signer should link with token", func(t *testing.T) {
		signer := handoff.NewSigner("secret", time.Minute)
		f := newFixture(signer)
		f.store.AddItem(context.Background(), cart.Product{ID: 2, Name: "Kablosuz Kulaklık", Price: "449,99 TL"})
		f.store.AddItem(context.Background(), cart.Product{ID: 2, Name: "Kablosuz Kulaklık", Price: "449,99 TL"})

		_, resp := f.do(t, http.MethodGet, "/cart/handoff", "")

		link, err := url.Parse(resp["data"].(map[string]interface{})["url"].(string))
		require.NoError(t, err)
		assert.Empty(t, link.Query().Get(handoff.ParamData))
		verified, err := signer.Verify(context.Background(), link.Query().Get(handoff.ParamToken))
		require.NoError(t, err)
		assert.Equal(t, items, verified)
	})
}
