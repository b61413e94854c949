package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"travel_smart/internal/domain"
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the form fields
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return PasswordProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01", fl.Field().String())
		return err == nil
	})
	return v
}

// PasswordProblem explains why p is too weak, or returns "" when it is acceptable.
func PasswordProblem(p string) string {
	switch {
	case len(p) < 8:
		return "Password must be at least 8 characters long."
	case !strings.ContainsFunc(p, unicode.IsUpper):
		return "Password must contain at least one uppercase letter."
	case !strings.ContainsFunc(p, unicode.IsDigit):
		return "Password must contain at least one number."
	case !strings.ContainsAny(p, passwordSpecials):
		return "Password must contain at least one special character."
	}
	return ""
}

// check validates v and reports the first failing field as a domain.ValidationError.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return domain.Invalid(fe.Field(), message(fe.Field(), fe))
	}
	return err
}

// checkVar validates a single value that has no struct tag of its own.
func checkVar(field, value, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		return domain.Invalid(field, message(field, ves[0]))
	}
	return err
}

func message(field string, fe validator.FieldError) string {
	label := humanize(field)
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Please enter a valid email address."
	case "password":
		return PasswordProblem(fe.Value().(string))
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)."
	case "yearmonth":
		return label + " must be in YYYY-MM format."
	case "credit_card":
		return "Please enter a valid card number."
	case "len":
		return fmt.Sprintf("%s must be %s characters.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "nefield":
		return fmt.Sprintf("%s must differ from %s.", label, strings.ToLower(humanize(fe.Param())))
	case "numeric", "alpha", "alphanum":
		return label + " contains invalid characters."
	case "min", "max", "gt", "gte", "lt", "lte":
		return label + " is out of range."
	}
	return label + " is invalid."
}

// humanize turns "departure_date" or "firstName" into "Departure date" / "First name".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case r == '_':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && i > 0:
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return "Field"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func checkDateOrder(field, from, to string) error {
	if from == "" || to == "" {
		return nil
	}
	a, err1 := time.Parse(time.DateOnly, from)
	b, err2 := time.Parse(time.DateOnly, to)
	if err1 != nil || err2 != nil {
		return nil // format is checked by the struct tags
	}
	if b.Before(a) {
		return domain.Invalid(field, humanize(field)+" cannot be before the start date.")
	}
	return nil
}
