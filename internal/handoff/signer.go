package handoff

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/cart"
	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

type claims struct {
	jwt.RegisteredClaims
	Items []cart.LineItem `json:"items"`
}

// Signer issues and checks HS256 hand-off tokens from the home zone to the
// cart zone.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) Sign(c context.Context, items []cart.LineItem) (string, error) {
	c, span := otel.Tracer.Start(c, "Signer Sign")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Signer Sign").
		Str(log.KeyProcess, "signing handoff token").
		Logger()

	if items == nil {
		items = []cart.LineItem{}
	}
	issuedAt := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Audience:  jwt.ClaimStrings{constants.AppCartZone},
			Issuer:    constants.AppHomeZone,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
		Items: items,
	})

	logger.Debug().Msg("signing handoff token")
	signed, err := token.SignedString(s.secret)
	if err != nil {
		err = fmt.Errorf("failed signing handoff token with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Debug().Msg("signed handoff token")

	return signed, nil
}

func (s *Signer) Verify(c context.Context, token string) ([]cart.LineItem, error) {
	c, span := otel.Tracer.Start(c, "Signer Verify")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Signer Verify").
		Str(log.KeyProcess, "parsing claims").
		Logger()

	logger.Debug().Msg("parsing claims")
	parsed := claims{}
	jwtToken, err := jwt.ParseWithClaims(token,
		&parsed,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithAudience(constants.AppCartZone),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppHomeZone),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		err = fmt.Errorf("%w: failed parsing claims with error=%w", errors.ErrTokenInvalid, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if !jwtToken.Valid {
		err = fmt.Errorf("failed validating token with error=%w", errors.ErrTokenInvalid)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Str("jti", parsed.ID).Msg("parsed claims")

	if parsed.Items == nil {
		return []cart.LineItem{}, nil
	}
	return parsed.Items, nil
}
