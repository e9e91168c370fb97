package binder

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/librisapp/libris/pkg/models"
)

var (
	dateRE = regexp.MustCompile(`^\d{4}-(0[0-9]|1[0-2])-(0[0-9]|1[0-9]|2[0-9]|3[0-1])$`)
)

// dateValidator ensures the value matches the format YYYY-MM-DD or the empty
// string. The empty string is accepted so the validator can be used to clear
// values; pair it with `ne=` when the value is required.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return dateRE.MatchString(value)
}

// conditionValidator accepts the known book conditions, or the empty string for
// optional fields.
func conditionValidator(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", models.BookConditionNew, models.BookConditionUsed, models.BookConditionDamaged:
		return true
	default:
		return false
	}
}
