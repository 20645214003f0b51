package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator with json tag semantics so failures name wire fields
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

func Create() CustomValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		jsonName := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if jsonName == "-" {
			return ""
		}
		if jsonName == "-," {
			return "-"
		}
		if jsonName != "" {
			return jsonName
		}

		yamlName := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if yamlName != "" {
			return yamlName
		}

		return field.Name
	})

	return CustomValidator{validator: validate}
}
