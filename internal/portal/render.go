package portal

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"heart-clinic/internal/gate"
	"heart-clinic/internal/middleware"
	"heart-clinic/internal/model"
	"heart-clinic/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login", "home", "predict", "result",
	"records", "dashboard", "appointments", "prescriptions",
}

// pageData is what every template receives; Data holds the page's own view.
type pageData struct {
	Title         string
	Session       model.Session
	HideDoctorNav bool
	Options       view.Options
	CSRFToken     string
	ChatFallback  string
	Alert         string
	Notice        string
	Data          any
}

func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

func newPage(title string, sess model.Session, d gate.Decision, data any) pageData {
	return pageData{
		Title:         title,
		Session:       sess,
		HideDoctorNav: d.HideDoctorNav,
		Data:          data,
	}
}

// render executes into a buffer first so a template error never leaves a
// half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, pd pageData) {
	t, ok := s.tmpl[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	pd.Options = s.opts
	pd.CSRFToken = middleware.CSRFToken(r.Context())
	pd.ChatFallback = ChatFallback

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", pd); err != nil {
		s.log.WithContext(r.Context()).WithError(err).WithField("page", name).Error("render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
