package router

import (
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/avkrapivin/top-me-up-sub000/web"

	"github.com/gin-contrib/multitemplate"
)

var funcMap = template.FuncMap{
	"upper": strings.ToUpper,
}

// LoadTemplates registers every view under web/templates/views with the base layout.
func LoadTemplates() (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layout, err := fs.ReadFile(web.Templates, "templates/layouts/base.html")
	if err != nil {
		return nil, err
	}
	views, err := fs.Glob(web.Templates, "templates/views/*.html")
	if err != nil {
		return nil, err
	}
	for _, view := range views {
		body, err := fs.ReadFile(web.Templates, view)
		if err != nil {
			return nil, err
		}
		r.AddFromStringsFuncs(path.Base(view), funcMap, string(layout), string(body))
	}
	return r, nil
}

