package view

import (
    "bytes"
    "embed"
    "fmt"
    "html/template"
    "net/http"
    "strings"
    "time"

    "github.com/tinoosan/escrow/internal/balancesheet"
    "github.com/tinoosan/escrow/internal/moneyfmt"
)

//go:embed templates/*.html templates/partials/*.html
var templatesFS embed.FS

// Engine renders HTML templates.
type Engine struct {
    templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
    Title string
    Data  any
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
    funcMap := template.FuncMap{
        "money": moneyfmt.Format,
        "value": moneyfmt.FormatValue,
        "unsigned": func(f float64) (string, error) {
            a, err := balancesheet.Sum(f)
            if err != nil {
                return "", err
            }
            return moneyfmt.Unsigned(a), nil
        },
        "upper": strings.ToUpper,
        "date": func(t time.Time) string {
            if t.IsZero() {
                return ""
            }
            return t.UTC().Format("Jan 2, 2006")
        },
    }
    tpl, err := template.New("root").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html", "templates/partials/*.html")
    if err != nil {
        return nil, err
    }
    return &Engine{templates: tpl}, nil
}

// Render executes a named template into a buffer and writes it with status.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data TemplateData) error {
    if e == nil {
        return fmt.Errorf("template engine not initialised")
    }
    var buf bytes.Buffer
    if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
        return err
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(status)
    _, err := buf.WriteTo(w)
    return err
}
