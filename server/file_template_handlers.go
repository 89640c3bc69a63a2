package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/mitti-dashboard/session"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const (
	contentTypeHTML = "text/html; charset=utf-8"
	layoutTemplate  = "layout.html"

	pageIndex              = "index.html"
	pageAbout              = "about.html"
	pageLogin              = "login.html"
	pageRegister           = "register.html"
	pageLoading            = "loading.html"
	pageDashboard          = "dashboard.html"
	pageCropRecommendation = "crop_recommendation.html"
	pageIrrigation         = "irrigation.html"
	pageDiseaseDetection   = "disease_detection.html"
	pagePestControl        = "pest_control.html"
)

var allPages = []string{
	pageIndex, pageAbout, pageLogin, pageRegister, pageLoading, pageDashboard,
	pageCropRecommendation, pageIrrigation, pageDiseaseDetection, pagePestControl,
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"percent": func(f float64) string {
		return fmt.Sprintf("%.0f%%", f*100)
	},
	"datetime": func(t time.Time) string {
		return t.Local().Format("02 Jan 2006 15:04")
	},
}

// PageData is the model every page template renders from.
type PageData struct {
	AppName string
	Path    string
	Session session.Snapshot
	Error   string
	Form    url.Values
	Data    any
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page template together with the shared layout
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(allPages))
	for _, name := range allPages {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// render executes the named page inside the layout. The page is rendered to
// a buffer first so a template error never leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, status int, data PageData) {
	tmpl, ok := s.pages[name]
	if !ok {
		logError(r.Method, r.URL.Path, "unknown page "+name)
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}

	data.AppName = s.appName
	data.Path = r.URL.Path
	data.Session = s.session.Snapshot()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Err(err).Str("page", name).Msg("Failed to render template")
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
