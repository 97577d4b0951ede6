// Package handoff carries a cart from the home zone into the cart zone
// through the link that opens the basket page.
package handoff

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/cart"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

const (
	ParamData  = "data"
	ParamToken = "token"
)

// payload bounds what a single link may carry: at most 100 lines, each with
// a quantity of at most 99.
type payload struct {
	Items []cart.LineItem `validate:"max=100,dive"`
}

func check(c context.Context, items []cart.LineItem) error {
	if err := validate.New().StructCtx(c, payload{Items: items}); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidHandoff, err)
	}
	return nil
}

// Encode renders items as base64 JSON for the data query parameter.
func Encode(items []cart.LineItem) (string, error) {
	if items == nil {
		items = []cart.LineItem{}
	}
	blob, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed marshaling handoff items with error=%w", err)
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

func Decode(data string) ([]cart.LineItem, error) {
	blob, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrMalformedHandoff, err)
	}
	items := []cart.LineItem{}
	if err := json.Unmarshal(blob, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrMalformedHandoff, err)
	}
	if items == nil {
		items = []cart.LineItem{}
	}
	return items, nil
}

// Link builds the cart zone URL carrying items. With a signer the items
// travel in a signed token, otherwise in the plain data parameter.
func Link(c context.Context, cartURL string, items []cart.LineItem, signer *Signer) (string, error) {
	u, err := url.Parse(cartURL)
	if err != nil {
		return "", fmt.Errorf("failed parsing cart url=%s with error=%w", cartURL, err)
	}

	query := u.Query()
	if signer != nil {
		token, err := signer.Sign(c, items)
		if err != nil {
			return "", err
		}
		query.Set(ParamToken, token)
	} else {
		data, err := Encode(items)
		if err != nil {
			return "", err
		}
		query.Set(ParamData, data)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// Resolve extracts hand-off items from a request query. found is false when
// the query carries neither parameter. A token wins over data; data is only
// honored when allowUnsigned is set or there is no signer. Items beyond the
// payload limits are rejected with ErrInvalidHandoff.
func Resolve(c context.Context, query url.Values, signer *Signer, allowUnsigned bool) (items []cart.LineItem, found bool, err error) {
	c, span := otel.Tracer.Start(c, "handoff Resolve")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "handoff Resolve").Logger()

	if token := query.Get(ParamToken); token != "" && signer != nil {
		logger = logger.With().Str(log.KeyProcess, "verifying handoff token").Logger()
		logger.Debug().Msg("verifying handoff token")
		items, err := signer.Verify(logger.WithContext(c), token)
		if err != nil {
			otel.RecordError(err, span)
			return nil, true, err
		}
		if err := check(c, items); err != nil {
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, true, err
		}
		logger.Debug().Int(log.KeyCartItemsCount, len(items)).Msg("verified handoff token")
		return items, true, nil
	}

	data := query.Get(ParamData)
	if data == "" {
		return nil, false, nil
	}
	if signer != nil && !allowUnsigned {
		err := errors.ErrUnsignedHandoff
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, true, err
	}

	logger = logger.With().Str(log.KeyProcess, "decoding handoff data").Logger()
	logger.Debug().Msg("decoding handoff data")
	items, err = Decode(data)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, true, err
	}
	if err := check(c, items); err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, true, err
	}
	logger.Debug().Int(log.KeyCartItemsCount, len(items)).Msg("decoded handoff data")
	return items, true, nil
}

type Importer interface {
	Replace(c context.Context, items []cart.LineItem)
}

// Import replaces the cart with items in a single store operation. Repeated
// ids merge into their first line, so the order and quantities carried by
// the link survive.
func Import(c context.Context, store Importer, items []cart.LineItem) {
	c, span := otel.Tracer.Start(c, "handoff Import")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "handoff Import").
		Int(log.KeyCartItemsCount, len(items)).
		Logger()
	c = logger.WithContext(c)

	logger.Info().Msg("importing handoff")
	store.Replace(c, items)
	logger.Info().Msg("imported handoff")
}
