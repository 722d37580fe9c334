// Package handler contains the HTTP request handlers.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming request (path values, query, JSON body)
//  2. Call the service layer
//  3. Write the response (status code, headers, JSON body)
//
// Handlers hold no business rules. Validation, defaults and activity logging
// live in the service package; status codes are picked in response.go.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// IndexTemplate is the single page served at "/".
const IndexTemplate = "showtrack.html"

// PageHandler serves the front end's HTML shell.
// The template is parsed once at startup and reused.
type PageHandler struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewPageHandler parses templateDir/showtrack.html.
func NewPageHandler(templateDir string, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.ParseFiles(filepath.Join(templateDir, IndexTemplate))
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		templates: tmpl,
		logger:    logger,
	}, nil
}

// HandleIndex renders the app page.
//
// HTTP: GET /
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	data := map[string]any{
		"Title": "ShowTracker",
	}
	if err := h.templates.ExecuteTemplate(w, IndexTemplate, data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("template", IndexTemplate),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
