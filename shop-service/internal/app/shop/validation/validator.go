// Package validation описывает правила полей сущностей магазина поверх go-playground/validator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	phoneRe    = regexp.MustCompile(`^[0-9*+#-]*$`)
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
)

// Сообщения, которые не выводятся из тега автоматически
var overrides = map[string]map[string]string{
	"currency": {
		"slug": "Currency must be a valid ISO 4217 code.",
	},
	"discount": {
		"min": "Discount must be between 0 and 100.",
		"max": "Discount must be between 0 and 100.",
	},
	"username": {
		"min": "Username must be between 4 and 20 characters.",
		"max": "Username must be between 4 and 20 characters.",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// decimal.Decimal сравнивается как число в тегах gt/lt
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		return len(CheckPassword(fl.Field().String())) == 0
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Struct проверяет теги структуры и возвращает Errors со всеми нарушениями
func Struct(s interface{}) error {
	return translate(validate.Struct(s), "")
}

// Var проверяет одно значение по тегу и привязывает нарушения к полю field
func Var(field string, value interface{}, tag string) error {
	return translate(validate.Var(value, tag), field)
}

func translate(err error, field string) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if field != "" {
			name = field
		}

		if fe.Tag() == "password" {
			for _, msg := range CheckPassword(fmt.Sprint(fe.Value())) {
				out = out.Add(name, msg)
			}
			continue
		}

		out = out.Add(name, message(name, fe))
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	if byTag, ok := overrides[field]; ok {
		if msg, ok := byTag[fe.Tag()]; ok {
			return msg
		}
	}

	label := Label(field)
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return label + " cannot be empty."
	case "max":
		if isString {
			return fmt.Sprintf("%s cannot exceed %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s.", label, fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s.", label, fe.Param())
	case "email":
		return "Enter a valid email address."
	case "slug":
		return label + " may contain only letters, digits, hyphens and underscores."
	case "phone":
		return label + " may contain only digits and the characters * + # -."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

// Label превращает имя поля в подпись для сообщения: quantity_per_unit -> Quantity per unit, unit_id -> Unit
func Label(field string) string {
	field = strings.TrimSuffix(field, "_id")
	field = strings.ReplaceAll(field, "_", " ")
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
