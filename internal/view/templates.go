package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/odyssey-erp/celtis-pos/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// NavLink is one entry of the screen menu. Confirm, when set, is asked in
// the browser before following the link.
type NavLink struct {
	Path    string
	Label   string
	Active  bool
	Confirm string
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	Locale      string
	Dir         string
	CurrentPath string
	Nav         []NavLink
	Toasts      any
	Data        any
	// T translates a message key in the request locale.
	T func(key string) string
	// Money formats cents in the configured currency.
	Money func(cents int64) string
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
