package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tmm-bienestar/internal/api"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// userMessage extracts the text to show the user for a failed call: the
// API's own message verbatim when it sent one, a generic Spanish fallback
// otherwise.
func userMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return api.GenericErrorMessage
}

// validationMessage flattens validator errors into one user-facing line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return api.GenericErrorMessage
	}
	var parts []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("El campo %s es obligatorio", fe.Field()))
		case "email":
			parts = append(parts, "El email no es válido")
		case "min":
			parts = append(parts, fmt.Sprintf("El campo %s es demasiado corto", fe.Field()))
		case "max":
			parts = append(parts, fmt.Sprintf("El campo %s es demasiado largo", fe.Field()))
		case "eqfield":
			parts = append(parts, "Las contraseñas no coinciden")
		default:
			parts = append(parts, fmt.Sprintf("El campo %s no es válido", fe.Field()))
		}
	}
	return strings.Join(parts, ". ")
}

func formInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.FormValue(name))
	return v
}

func formFloat(r *http.Request, name string) float64 {
	v, _ := strconv.ParseFloat(r.FormValue(name), 64)
	return v
}

func formBool(r *http.Request, name string) bool {
	v := r.FormValue(name)
	return v == "on" || v == "true" || v == "1"
}

func chiParam(r *http.Request, param string) string {
	return chi.URLParam(r, param)
}

func pathInt(r *http.Request, param string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", param)
	}
	return id, nil
}
