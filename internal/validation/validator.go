package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/pkg/utils"
)

// ghanaPhonePattern accepts 0XXXXXXXXX and +233XXXXXXXXX forms.
var ghanaPhonePattern = regexp.MustCompile(`^(\+233|0)\d{9,10}$`)

// Result lists every violated rule so a caller can show them all at once.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// Report fields by their human label rather than the Go field name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		if name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
			return name
		}
		return field.Name
	})

	// required alone lets "   " through.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("ghphone", func(fl validator.FieldLevel) bool {
		return IsGhanaPhone(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Engine exposes the underlying validator so handlers share the same
// registered tags when checking request DTOs.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

func IsGhanaPhone(phone string) bool {
	return ghanaPhonePattern.MatchString(strings.TrimSpace(phone))
}

// Validate checks a draft against required-field and business-date rules.
// today is compared by calendar date only, in today's location.
func (v *Validator) Validate(draft domain.BookingDraft, today time.Time) Result {
	var errs []string

	errs = append(errs, v.structErrors(draft)...)

	switch {
	case draft.StartDate.IsZero():
		errs = append(errs, "start date is required")
	case utils.IsBeforeDate(draft.StartDate.In(today.Location()), today):
		errs = append(errs, "start date cannot be in the past")
	}

	if draft.EndDate.IsZero() {
		errs = append(errs, "end date is required")
	} else if !draft.StartDate.IsZero() && !draft.EndDate.After(draft.StartDate) {
		errs = append(errs, "end date must be after start date")
	}

	if draft.SelfDrive {
		errs = append(errs, v.licenseErrors(draft.License, today)...)
	} else if strings.TrimSpace(draft.DriverID) == "" {
		errs = append(errs, "a driver must be assigned when the booking is not self-drive")
	}

	errs = append(errs, v.paymentErrors(draft.PaymentMethod, draft.PaymentDetails)...)

	return Result{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func (v *Validator) licenseErrors(license *domain.DriverLicense, today time.Time) []string {
	if license == nil {
		return []string{
			"driver license number is required",
			"driver license class is required",
			"driver license issue date is required",
			"driver license expiry date is required",
		}
	}

	errs := v.structErrors(*license)
	if license.IssueDate.IsZero() {
		errs = append(errs, "driver license issue date is required")
	}
	switch {
	case license.ExpiryDate.IsZero():
		errs = append(errs, "driver license expiry date is required")
	case utils.IsBeforeDate(license.ExpiryDate.In(today.Location()), today):
		errs = append(errs, "driver license has expired")
	}
	return errs
}

func (v *Validator) paymentErrors(method domain.PaymentMethod, details domain.PaymentDetails) []string {
	switch method {
	case domain.PaymentMethodCash:
		return nil
	case domain.PaymentMethodPayInSlip:
		if details.PayInSlip == nil {
			return []string{"pay-in-slip details are required"}
		}
		return v.structErrors(*details.PayInSlip)
	case domain.PaymentMethodMobileMoney:
		phone := ""
		if details.MobileMoney != nil {
			phone = details.MobileMoney.PhoneNumber
		}
		if err := v.validate.Var(phone, "required,ghphone"); err != nil {
			return []string{"mobile money number must be a valid Ghana mobile number"}
		}
		return nil
	case "":
		return []string{"payment method is required"}
	default:
		return []string{fmt.Sprintf("unsupported payment method %q", method)}
	}
}

// Struct checks the tags on a request DTO and renders each failure.
func (v *Validator) Struct(s interface{}) []string {
	return v.structErrors(s)
}

// structErrors runs the struct tags on s and renders each failure.
func (v *Validator) structErrors(s interface{}) []string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, Message(fe))
	}
	return msgs
}

// Message renders a single field error for API consumers.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "ghphone":
		return fmt.Sprintf("%s must be a valid Ghana mobile number", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
