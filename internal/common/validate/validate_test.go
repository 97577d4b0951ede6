package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alturino/storefront/internal/cart"
)

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		name    string
		product cart.Product
		isValid bool
	}{
		{name: "given turkish price should be valid", product: cart.Product{ID: 2, Name: "Kablosuz Kulaklık", Price: "449,99 TL"}, isValid: true},
		{name: "given dotted price should be valid", product: cart.Product{ID: 1, Name: "Akıllı Saat", Price: "799.99 TL"}, isValid: true},
		{name: "given id zero should be valid", product: cart.Product{ID: 0, Name: "Hediye Kartı", Price: "100 TL"}, isValid: true},
		{name: "given unparseable price should be invalid", product: cart.Product{ID: 1, Name: "Akıllı Saat", Price: "ücretsiz"}, isValid: false},
		{name: "given zero price should be invalid", product: cart.Product{ID: 1, Name: "Akıllı Saat", Price: "0,00 TL"}, isValid: false},
		{name: "given empty price should be invalid", product: cart.Product{ID: 1, Name: "Akıllı Saat"}, isValid: false},
		{name: "given empty name should be invalid", product: cart.Product{ID: 1, Price: "799.99 TL"}, isValid: false},
		{name: "given negative id should be invalid", product: cart.Product{ID: -1, Name: "Akıllı Saat", Price: "799.99 TL"}, isValid: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := New().Struct(test.product)
			if test.isValid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
