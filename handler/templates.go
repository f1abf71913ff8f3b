package handler

import (
	"embed"
	"errors"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

type TemplateRegistry struct {
	templates map[string]*template.Template
}

func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: map[string]*template.Template{
			"post-view.html": template.Must(template.ParseFS(templateFS, "templates/post-view.html")),
		},
	}
}

func (t *TemplateRegistry) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return errors.New("template not found: " + name)
	}
	return tmpl.Execute(w, data)
}
