package service

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

// toConnectError classifies err and converts it for the wire. Transient
// faults are logged at error level; everything else is an expected outcome.
func toConnectError(op string, err error) error {
	aerr := apperr.Classify(err)
	if aerr.Kind == apperr.KindTransient {
		slog.Error(op+" failed", "error", err)
	} else {
		slog.Warn(op+" rejected", "kind", aerr.Kind, "error", err)
	}
	return apiconnect.NewError(aerr, nil)
}

func invalid(message string) error {
	return apiconnect.NewError(apperr.Validation(message), nil)
}

// ValidationHelper validates request messages against their validate tags.
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a validator that reports JSON field names and
// knows the "yearmonth" (YYYY-MM) tag.
func NewValidationHelper() *ValidationHelper {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		_, err := models.ParseMonth(fl.Field().String())
		return err == nil
	})
	return &ValidationHelper{validator: v}
}

// Validate returns an invalid-argument Connect error listing each failing
// field, or nil.
func (vh *ValidationHelper) Validate(msg any) error {
	err := vh.validator.Struct(msg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apiconnect.NewError(apperr.Wrap(apperr.KindValidation, "invalid request", err), nil)
	}

	fields := make(map[string]string, len(verrs))
	var names []string
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
		names = append(names, fe.Field())
	}
	return apiconnect.NewError(
		apperr.New(apperr.KindValidation, "invalid "+strings.Join(names, ", ")),
		fields,
	)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be an email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "yearmonth":
		return "must be YYYY-MM"
	case "datetime":
		return "must match " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	}
	return fmt.Sprintf("failed %q", fe.Tag())
}
