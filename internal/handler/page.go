package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFiles embed.FS

// PageHandler serves the embedded chat page.
type PageHandler struct {
	tmpl   *template.Template
	logger *slog.Logger
}

// NewPageHandler parses the embedded templates.
func NewPageHandler(logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		tmpl:   tmpl,
		logger: logger,
	}, nil
}

// Index renders the chat page.
// GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "chat.html", nil); err != nil {
		h.logger.Error("failed to render page", "error", err)
	}
}
