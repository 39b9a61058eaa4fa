// Package validator centraliza la validación por tags de DTOs y registros.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate

	phoneExtPattern = regexp.MustCompile(`^\+\d+$`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Los mensajes usan el nombre JSON del campo.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("phoneext", func(fl validator.FieldLevel) bool {
			return phoneExtPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
			return digitsPattern.MatchString(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// Struct valida s y devuelve un mensaje legible con la primera falla, o nil.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(message(verrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es obligatorio", field)
	case "email":
		return fmt.Sprintf("%s debe ser un email válido", field)
	case "min":
		return fmt.Sprintf("%s debe tener al menos %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s debe tener como máximo %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s debe tener longitud %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s debe ser mayor o igual a %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s debe ser menor o igual a %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de [%s]", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s debe ser una URL válida", field)
	case "uuid":
		return fmt.Sprintf("%s debe ser un identificador válido", field)
	case "fqdn":
		return fmt.Sprintf("%s debe ser un dominio válido", field)
	case "phoneext":
		return fmt.Sprintf("%s debe tener el formato +<dígitos>", field)
	case "digits":
		return fmt.Sprintf("%s solo admite dígitos", field)
	}
	return fmt.Sprintf("%s no es válido (%s)", field, fe.Tag())
}
