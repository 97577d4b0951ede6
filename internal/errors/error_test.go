package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "given sentinel should name it", err: ErrTokenInvalid, expected: "invalid token"},
		{name: "given wrapped sentinel should name it", err: fmt.Errorf("%w: %w", ErrInvalidHandoff, assert.AnError), expected: "cart handoff exceeds limits"},
		{name: "given foreign error should be empty", err: assert.AnError, expected: ""},
		{name: "given nil should be empty", err: nil, expected: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Kind(test.err))
		})
	}
}
