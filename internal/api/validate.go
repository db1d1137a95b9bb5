package api

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Sri Lankan phone numbers after stripping spaces, dashes and parentheses:
// mobiles (07X XXXXXXX) and area-code landlines (0XX XXXXXXX).
var sriLankaPhonePattern = regexp.MustCompile(`^0(7[01245678]|1[1-9]|[2-9][1-9])\d{7}$`)

// Validator validates request payloads and renders violations as an itemized
// list of human-readable messages. All violated constraints are reported, not
// just the first.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json name so messages match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("sl_phone", func(fl validator.FieldLevel) bool {
		cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(fl.Field().String())
		return sriLankaPhonePattern.MatchString(cleaned)
	})
	_ = v.RegisterValidation("password_chars", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		var lower, upper, digit bool
		for _, r := range s {
			switch {
			case r >= 'a' && r <= 'z':
				lower = true
			case r >= 'A' && r <= 'Z':
				upper = true
			case r >= '0' && r <= '9':
				digit = true
			}
		}
		return lower && upper && digit
	})
	_ = v.RegisterValidation("harvest_window", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		now := time.Now()
		return !t.Before(now.AddDate(-1, 0, 0)) && !t.After(now.AddDate(0, 1, 0))
	})

	return &Validator{v: v}
}

// Struct validates s and returns one message per violated constraint, or nil
// when the payload is valid.
func (val *Validator) Struct(s any) []string {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"invalid request payload"}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, messageFor(fe))
	}
	return details
}

func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be less than %s characters", field, fe.Param())
	case "email":
		return "Valid email address is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "sl_phone":
		return "Please enter a valid Sri Lankan mobile number (e.g., 0766025562, 0112345678)"
	case "password_chars":
		return "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	case "harvest_window":
		return "Harvest date must be within the last year and not more than one month in the future"
	case "http_url":
		return "Invalid image URL"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
