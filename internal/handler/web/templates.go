package web

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates renders the embedded HTML pages for echo.
type Templates struct {
	t *template.Template
}

// NewTemplates parses the embedded pages.
func NewTemplates() (*Templates, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Templates{t: t}, nil
}

// MustTemplates is NewTemplates for package init and tests.
func MustTemplates() *Templates {
	t, err := NewTemplates()
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Templates) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return t.t.ExecuteTemplate(w, name, data)
}

// IndexPage is the data of the index picker page.
type IndexPage struct {
	Error   string
	Symbols []string
}

// PlotPage is the data of the chart page.
type PlotPage struct {
	Error string
	Text  string
	Image template.URL
}

// pngDataURL embeds a PNG as a data URL for an img src.
func pngDataURL(png []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}
