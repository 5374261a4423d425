package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tmm-bienestar/internal/api"
)

func TestFormatCLP(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0"},
		{950, "$950"},
		{1500, "$1.500"},
		{45000, "$45.000"},
		{1250000, "$1.250.000"},
		{19990.75, "$19.990"},
		{-45000, "-$45.000"},
	}

	for _, tt := range tests {
		if got := FormatCLP(tt.amount); got != tt.want {
			t.Errorf("FormatCLP(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	apiErr := &api.Error{StatusCode: 400, Detail: "Credenciales inválidas"}
	if got := userMessage(apiErr); got != "Credenciales inválidas" {
		t.Errorf("userMessage should surface the API detail, got %q", got)
	}

	plain := http.ErrHandlerTimeout
	if got := userMessage(plain); got != api.GenericErrorMessage {
		t.Errorf("non-API errors should fall back to the generic message, got %q", got)
	}
}

func TestFormHelpers(t *testing.T) {
	form := url.Values{
		"cantidad": {"3"},
		"monto":    {"45000.5"},
		"activo":   {"on"},
		"basura":   {"abc"},
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if got := formInt(r, "cantidad"); got != 3 {
		t.Errorf("formInt = %d, want 3", got)
	}
	if got := formInt(r, "basura"); got != 0 {
		t.Errorf("formInt on garbage = %d, want 0", got)
	}
	if got := formFloat(r, "monto"); got != 45000.5 {
		t.Errorf("formFloat = %v, want 45000.5", got)
	}
	if !formBool(r, "activo") {
		t.Error("formBool should treat \"on\" as true")
	}
	if formBool(r, "ausente") {
		t.Error("formBool should treat a missing field as false")
	}
}
