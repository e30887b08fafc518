package validator

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	itemCodePattern    = regexp.MustCompile(`^[MS]\d{4}$`)
	orderNumberPattern = regexp.MustCompile(`^O\d+$`)
	staffIDPattern     = regexp.MustCompile(`^S\d{4}$`)
	phonePattern       = regexp.MustCompile(`^(\d{3}-\d{3}-\d{4}|\d{3}-\d{4}-\d{4})$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	mustRegister("itemcode", itemCodePattern)
	mustRegister("ordernumber", orderNumberPattern)
	mustRegister("staffid", staffIDPattern)
	mustRegister("phone", phonePattern)
}

func mustRegister(tag string, re *regexp.Regexp) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// Var validates a single value against tag, e.g. Var("M0001", "itemcode").
func Var(v any, tag string) error {
	return validate.Var(v, tag)
}

func IsItemCode(s string) bool    { return Var(s, "itemcode") == nil }
func IsOrderNumber(s string) bool { return Var(s, "ordernumber") == nil }
func IsStaffID(s string) bool     { return Var(s, "staffid") == nil }
func IsPhone(s string) bool       { return Var(s, "phone") == nil }

// FormatErrors converts validator.ValidationErrors into a map of
// field namespace → human-readable message.
func FormatErrors(err error) map[string]string {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs
	}
	for _, e := range ve {
		errs[e.StructNamespace()] = formatFieldError(e)
	}
	return errs
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "itemcode":
		return "Must be M or S followed by 4 digits"
	case "ordernumber":
		return "Must be O followed by digits"
	case "staffid":
		return "Must be S followed by 4 digits"
	case "phone":
		return "Must look like 012-345-6789 or 011-2345-6789"
	case "len":
		return fmt.Sprintf("Length must be %s", e.Param())
	case "numeric":
		return "Must be a numeric value"
	case "gt":
		return fmt.Sprintf("Must be greater than %s", e.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", e.Param())
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}
