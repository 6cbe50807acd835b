package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/marginboard/marginboard/internal/shared"
	"github.com/marginboard/marginboard/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Nickname    string
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	printer := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"formatMoney": func(v float64) string {
			return printer.Sprintf("%.2f", v)
		},
		"formatAmount": func(v int64) string {
			return printer.Sprintf("%d", v)
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
