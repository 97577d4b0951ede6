package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/cart"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/handoff"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/notifier"
	"github.com/Alturino/storefront/internal/otel"
)

type HomeController struct {
	store   *cart.Store
	signer  *handoff.Signer
	cartURL string
}

func AttachHomeController(
	mux *mux.Router,
	store *cart.Store,
	bus *notifier.Bus,
	signer *handoff.Signer,
	cartURL string,
) {
	controller := HomeController{store: store, signer: signer, cartURL: cartURL}

	router := mux.PathPrefix("/cart").Subrouter()
	router.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/count", controller.Count).Methods(http.MethodGet)
	router.HandleFunc("/handoff", controller.Handoff).Methods(http.MethodGet)
	router.Handle("/events", inHttp.ServeEvents(bus)).Methods(http.MethodGet)
}

func (t HomeController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "HomeController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "HomeController AddItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := cart.Product{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().
		Str(log.KeyProcess, "adding item").
		Int(log.KeyProductID, reqBody.ID).
		Logger()
	logger.Info().Msg("adding item")
	c = logger.WithContext(c)
	t.store.AddItem(c, reqBody)
	state := t.store.State()
	logger.Info().Int(log.KeyCartTotalItems, state.TotalItems).Msg("added item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.StatusSuccess,
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("added productId=%d to cart", reqBody.ID),
		"data": map[string]interface{}{
			"cart": state,
		},
	})
}

// Count backs the header badge.
func (t HomeController) Count(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "HomeController Count")
	defer span.End()

	state := t.store.State()
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.StatusSuccess,
		"statusCode": http.StatusOK,
		"message":    "cart count",
		"data": map[string]interface{}{
			"totalItems": state.TotalItems,
			"totalPrice": state.TotalPrice,
		},
	})
}

func (t HomeController) Handoff(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "HomeController Handoff")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "HomeController Handoff").
		Str(log.KeyProcess, "building handoff link").
		Logger()

	logger.Info().Msg("building handoff link")
	c = logger.WithContext(c)
	link, err := handoff.Link(c, t.cartURL, t.store.State().Items, t.signer)
	if err != nil {
		err = fmt.Errorf("failed building handoff link with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusInternalServerError, err)
		return
	}
	logger.Info().Str(log.KeyHandoffURL, link).Msg("built handoff link")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.StatusSuccess,
		"statusCode": http.StatusOK,
		"message":    "handoff link",
		"data": map[string]interface{}{
			"url": link,
		},
	})
}
