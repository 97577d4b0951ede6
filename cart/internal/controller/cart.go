package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/internal/cart"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/handoff"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/notifier"
	"github.com/Alturino/storefront/internal/otel"
)

type CartController struct {
	store         *cart.Store
	signer        *handoff.Signer
	allowUnsigned bool
}

func AttachCartController(
	mux *mux.Router,
	store *cart.Store,
	bus *notifier.Bus,
	signer *handoff.Signer,
	allowUnsigned bool,
) {
	controller := CartController{store: store, signer: signer, allowUnsigned: allowUnsigned}

	router := mux.PathPrefix("/cart").Subrouter()
	router.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	router.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/items/{id}", controller.SetQuantity).Methods(http.MethodPut)
	router.HandleFunc("/items/{id}", controller.RemoveItem).Methods(http.MethodDelete)
	router.HandleFunc("/reload", controller.Reload).Methods(http.MethodPost)
	router.HandleFunc("/loading", controller.SetLoading).Methods(http.MethodPut)
	router.HandleFunc("/error", controller.SetError).Methods(http.MethodPut)
	router.Handle("/events", inHttp.ServeEvents(bus)).Methods(http.MethodGet)
}

func (t CartController) writeState(w http.ResponseWriter, r *http.Request, message string) {
	inHttp.WriteJsonResponse(r.Context(), w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.StatusSuccess,
		"statusCode": http.StatusOK,
		"message":    message,
		"data": map[string]interface{}{
			"cart": t.store.State(),
		},
	})
}

func itemID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, fmt.Errorf("%w: id=%s", errors.ErrInvalidCartItemId, mux.Vars(r)["id"])
	}
	return id, nil
}

// GetCart imports a hand-off carried in the query before returning the cart.
func (t CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController GetCart").
		Str(log.KeyProcess, "resolving handoff").
		Logger()

	logger.Info().Msg("resolving handoff")
	c = logger.WithContext(c)
	items, found, err := handoff.Resolve(c, r.URL.Query(), t.signer, t.allowUnsigned)
	if err != nil {
		err = fmt.Errorf("failed resolving handoff with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	if found {
		logger = logger.With().Str(log.KeyProcess, "importing handoff").Logger()
		logger.Info().Msg("importing handoff")
		handoff.Import(logger.WithContext(c), t.store, items)
		logger.Info().Msg("imported handoff")
	}

	t.writeState(w, r.WithContext(c), "cart found")
}

func (t CartController) SetQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController SetQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController SetQuantity").
		Any(log.KeyPathValues, mux.Vars(r)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating id").Logger()
	id, err := itemID(r)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.SetQuantity{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().
		Str(log.KeyProcess, "setting quantity").
		Int(log.KeyProductID, id).
		Int(log.KeyQuantity, *reqBody.Quantity).
		Logger()
	logger.Info().Msg("setting quantity")
	c = logger.WithContext(c)
	t.store.SetQuantity(c, id, *reqBody.Quantity)
	logger.Info().Msg("set quantity")

	t.writeState(w, r.WithContext(c), "quantity updated")
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Any(log.KeyPathValues, mux.Vars(r)).
		Str(log.KeyProcess, "validating id").
		Logger()

	id, err := itemID(r)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "removing item").Int(log.KeyProductID, id).Logger()
	logger.Info().Msg("removing item")
	c = logger.WithContext(c)
	t.store.RemoveItem(c, id)
	logger.Info().Msg("removed item")

	t.writeState(w, r.WithContext(c), "item removed")
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ClearCart").
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	t.store.Clear(c)
	logger.Info().Msg("cleared cart")

	t.writeState(w, r.WithContext(c), "cart cleared")
}

func (t CartController) Reload(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Reload")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController Reload").
		Str(log.KeyProcess, "reloading cart").
		Logger()

	logger.Info().Msg("reloading cart")
	c = logger.WithContext(c)
	t.store.Reload(c)
	logger.Info().Msg("reloaded cart")

	t.writeState(w, r.WithContext(c), "cart reloaded")
}

func (t CartController) SetLoading(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController SetLoading")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController SetLoading").
		Str(log.KeyProcess, "decoding requestbody").
		Logger()

	reqBody := request.SetLoading{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}

	t.store.SetLoading(*reqBody.Loading)
	logger.Debug().Bool("loading", *reqBody.Loading).Msg("set loading")

	t.writeState(w, r.WithContext(c), "loading updated")
}

func (t CartController) SetError(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController SetError")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController SetError").
		Str(log.KeyProcess, "decoding requestbody").
		Logger()

	reqBody := request.SetError{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}

	t.store.SetError(reqBody.Message)
	logger.Debug().Msg("set error")

	t.writeState(w, r.WithContext(c), "error updated")
}
