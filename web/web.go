// Package web embeds the HTML views and e-mail templates.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"myblog/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

//go:embed templates
var FS embed.FS

// views maps the name handlers render to the view file under templates/views.
var views = map[string]string{
	"blog/list.html":        "blog/list.html",
	"blog/detail.html":      "blog/detail.html",
	"generic/comments.html": "generic/comments.html",
	"auth/login.html":       "auth/login.html",
	"error.html":            "error.html",
}

// FuncMap is shared by every view.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"markdown": utils.RenderComment,
		"date": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
	}
}

// Renderer assembles every view with the layout and includes.
func Renderer() (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()
	for name, view := range views {
		tmpl, err := template.New(name).Funcs(FuncMap()).ParseFS(FS,
			"templates/layouts/*.html",
			"templates/includes/*.html",
			"templates/views/"+view,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse view %s: %w", name, err)
		}
		r.Add(name, tmpl.Lookup("base.html"))
	}
	return r, nil
}
