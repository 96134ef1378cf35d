package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		for day := time.Sunday; day <= time.Saturday; day++ {
			if fl.Field().String() == day.String() {
				return true
			}
		}

		return false
	})

	_ = v.RegisterValidation("month", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01", fl.Field().String())
		return err == nil
	})

	return v
}

// Validate runs the struct tags of value and folds every violation into a
// single ErrValidation.
func Validate(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Validation("%v", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}

	return Validation("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s is too long (%s characters tops)", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s is too short (%s characters at least)", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters long", fe.Field(), fe.Param())
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", fe.Field())
	case "weekday":
		return fmt.Sprintf("%s must be a day of the week", fe.Field())
	case "month":
		return fmt.Sprintf("%s must be formatted as YYYY-MM", fe.Field())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}

// BindJSON decodes the request body into dst and validates it.
func BindJSON(gctx *gin.Context, dst any) error {
	err := gctx.ShouldBindJSON(dst)
	if err != nil {
		return Validation("malformed body: %v", err)
	}

	return Validate(dst)
}

// DecodeStrict decodes a JSON body rejecting any field dst does not declare,
// then validates it.
func DecodeStrict(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		return Validation("malformed body: %v", err)
	}

	return Validate(dst)
}
