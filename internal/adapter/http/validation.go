package http

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

var (
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reCcy   = regexp.MustCompile(`^[A-Z0-9]{2,16}$`)
)

type CustomValidator struct{ v *validator.Validate }

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

func NewValidator() *CustomValidator {
	v := validator.New()

	// decimal fields validate through their float value, so the
	// numeric tags (gt, gte, lte) apply to them directly
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// user and resource ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return reHex32.MatchString(fl.Field().String())
	})
	// currency codes are short upper-case symbols
	_ = v.RegisterValidation("ccy", func(fl validator.FieldLevel) bool {
		return reCcy.MatchString(fl.Field().String())
	})

	return &CustomValidator{v: v}
}

var plainMsg = map[string]string{
	"required": "is required",
	"hex32":    "must be 32-char lowercase hex",
	"ccy":      "must be an upper-case currency code",
}

var paramMsg = map[string]string{
	"oneof": "must be one of: %s",
	"gt":    "must be greater than %s",
	"gte":   "must be greater than or equal to %s",
	"lte":   "must be less than or equal to %s",
	"min":   "needs at least %s entries",
}

func fieldMessage(e validator.FieldError) string {
	if m, ok := plainMsg[e.Tag()]; ok {
		return m
	}
	if m, ok := paramMsg[e.Tag()]; ok {
		return fmt.Sprintf(m, e.Param())
	}
	return e.Tag() + " validation failed"
}

// ToFieldErrors flattens a validator error into the response shape.
// Non-validation errors land under the pseudo-field "_".
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		out = append(out, FieldError{Field: e.Field(), Message: fieldMessage(e)})
	}
	return out
}
