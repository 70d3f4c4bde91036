package records

import (
	"fmt"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the record rules registered:
//
//	finite   - float field that is neither NaN nor ±Inf
//	reaction - string field holding one of ReactionKinds
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterValidators(v); err != nil {
		// Only fails on a malformed tag name, which is a programming error.
		panic(err)
	}
	return v
}

// RegisterValidators adds the record rules to an existing validator
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("finite", validateFinite); err != nil {
		return err
	}
	return v.RegisterValidation("reaction", validateReaction)
}

func validateFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		x := f.Float()
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	default:
		return false
	}
}

func validateReaction(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	return ReactionKind(f.String()).Valid()
}

// check runs v over req and wraps any failure in ErrValidation
func check(v *validator.Validate, req any) error {
	if err := v.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
