package handlers

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"

	"tmm-bienestar/internal/services"
)

// Renderer holds one template set per page, each parsed together with the
// shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses every page template under dir against the layout.
func NewRenderer(dir string) (*Renderer, error) {
	layout := filepath.Join(dir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(dir, "pages", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	funcs := template.FuncMap{
		"money": FormatCLP,
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := filepath.Base(page)
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFiles(layout, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// PageData is the envelope every template receives.
type PageData struct {
	Title     string
	Session   *services.Session
	CartCount int
	CSRFToken string
	Error     string
	Flash     string
	Data      any
}

// Render writes the named page. Render failures become a 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data PageData) {
	tmpl, ok := r.templates[name]
	if !ok {
		log.Printf("Unknown template %q", name)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Printf("Failed to render %s: %v", name, err)
	}
}

// FormatCLP renders an amount as Chilean pesos with dot separators.
func FormatCLP(amount float64) string {
	n := int64(amount)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := fmt.Sprintf("%d", n)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}
	return sign + "$" + string(out)
}
