package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationFailed error portador de violaciones de campo, para que los casos
// de uso puedan devolverlas sin acoplarse a HTTP.
type ValidationFailed struct {
	Violations []FieldViolation
}

func (e *ValidationFailed) Error() string {
	return "la petición contiene campos inválidos"
}

var validate = newValidator()

// newValidator instancia única de validator con los nombres de campo tomados
// del tag json (para que las violaciones hablen el idioma del wire).
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate valida los tags `validate` del struct y devuelve las violaciones de
// campo, o nil si todo es válido.
func Validate(s any) []FieldViolation {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldViolation{{Field: "", Message: err.Error()}}
	}
	out := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldViolation{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "el campo es obligatorio"
	case "email":
		return "el formato del email debe ser válido"
	case "oneof":
		return "el valor debe ser uno de: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "debe tener al menos " + fe.Param() + " caracteres"
	case "max":
		return "debe tener como máximo " + fe.Param() + " caracteres"
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "uuid":
		return "debe ser un UUID válido"
	default:
		return "valor inválido (" + fe.Tag() + ")"
	}
}
