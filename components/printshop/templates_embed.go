package printshop

import (
	"embed"
	"fmt"
	"io/fs"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// TemplatesFS returns the embedded pages rooted at the template directory,
// so names resolve as "login.html" rather than "templates/login.html".
func TemplatesFS() (fs.FS, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("printshop: open embedded templates: %w", err)
	}
	return sub, nil
}

// NewTemplateRenderer creates a go-template renderer backed by the embedded
// login, dashboard and order form pages. It never touches the working
// directory.
func NewTemplateRenderer() (Renderer, error) {
	pages, err := TemplatesFS()
	if err != nil {
		return nil, err
	}
	return template.NewRenderer(
		template.WithFS(pages),
		template.WithExtension(".html"),
	)
}
