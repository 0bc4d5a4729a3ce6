package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/avoronkov/webauth/internal/common/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

type templates struct {
	register  *template.Template
	login     *template.Template
	dashboard *template.Template
}

func parseTemplates() (*templates, error) {
	register, err := template.ParseFS(templatesFS, "templates/register.html")
	if err != nil {
		return nil, err
	}
	login, err := template.ParseFS(templatesFS, "templates/login.html")
	if err != nil {
		return nil, err
	}
	dashboard, err := template.ParseFS(templatesFS, "templates/dashboard.html")
	if err != nil {
		return nil, err
	}

	return &templates{
		register:  register,
		login:     login,
		dashboard: dashboard,
	}, nil
}

type formData struct {
	Username string
	Email    string
	Notice   string
	Error    string
}

type dashboardData struct {
	Username string
}

func renderPage(w http.ResponseWriter, log *logger.Logger, t *template.Template, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.Execute(w, data); err != nil {
		log.Errorf("failed to render %s: %v", t.Name(), err)
	}
}
