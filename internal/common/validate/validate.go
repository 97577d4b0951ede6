package validate

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Alturino/storefront/internal/price"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// New returns the shared validator with the storefront tags registered.
func New() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := validate.RegisterValidation("price", ValidatePrice); err != nil {
			panic(err)
		}
	})
	return validate
}

// ValidatePrice accepts display prices such as "1.299,99 TL" whose parsed
// value is positive.
func ValidatePrice(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return price.Parse(value).IsPositive()
}
