package http

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

var (
	reHex32    = regexp.MustCompile(`^[a-f0-9]{32}$`)
	rePAN      = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)
	reAadhaar  = regexp.MustCompile(`^[0-9]{12}$`)
	reIFSC     = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	reInMobile = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// application/applicant ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return reHex32.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pan", func(fl validator.FieldLevel) bool {
		return rePAN.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("aadhaar", func(fl validator.FieldLevel) bool {
		return reAadhaar.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
		return reIFSC.MatchString(fl.Field().String())
	})
	// 10-digit Indian mobile
	_ = v.RegisterValidation("inmobile", func(fl validator.FieldLevel) bool {
		return reInMobile.MatchString(fl.Field().String())
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "pan":
			out = append(out, FieldError{Field: field, Message: "must match PAN format AAAAA9999A"})
		case "aadhaar":
			out = append(out, FieldError{Field: field, Message: "must be a 12-digit Aadhaar number"})
		case "ifsc":
			out = append(out, FieldError{Field: field, Message: "must be a valid IFSC code"})
		case "inmobile":
			out = append(out, FieldError{Field: field, Message: "must be a 10-digit Indian mobile number"})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
