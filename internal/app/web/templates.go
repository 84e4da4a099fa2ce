package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

//go:embed templates/*.html
var templateFS embed.FS

// parseTemplates builds one template set per page, each sharing the base
// layout. Pages are addressed by file name, e.g. "user_list.html".
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	sets := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := path.Base(page)
		if name == "base.html" {
			continue
		}
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		sets[name] = tmpl
	}
	return sets, nil
}
