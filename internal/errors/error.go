package errors

import (
	"errors"
)

var (
	ErrMalformedCart     = errors.New("malformed persisted cart")
	ErrMalformedHandoff  = errors.New("malformed cart handoff")
	ErrUnsignedHandoff   = errors.New("unsigned cart handoff is not accepted")
	ErrInvalidHandoff    = errors.New("cart handoff exceeds limits")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrUnknownStorage    = errors.New("unknown storage driver")
	ErrUnknownTransport  = errors.New("unknown notifier transport")
	ErrInvalidCartItemId = errors.New("invalid cart item id")
)

var sentinels = []error{
	ErrMalformedCart,
	ErrMalformedHandoff,
	ErrUnsignedHandoff,
	ErrInvalidHandoff,
	ErrTokenInvalid,
	ErrUnknownStorage,
	ErrUnknownTransport,
	ErrInvalidCartItemId,
}

// Kind names the first sentinel err wraps, or returns "" for foreign errors.
func Kind(err error) string {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ""
}
