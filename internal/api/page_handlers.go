package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pinshelf/pinshelf-server/internal/http/response"
)

// handleRecipePage serves GET /r/{idOrSlug}: the published recipe as a
// standalone HTML page with its pin overlay.
func (s *Server) handleRecipePage(w http.ResponseWriter, r *http.Request) {
	s.renderTo(w, r, "text/html; charset=utf-8", s.services.Storefront.RenderPage)
}

// handleRecipePreview serves GET /r/{idOrSlug}/preview.png.
func (s *Server) handleRecipePreview(w http.ResponseWriter, r *http.Request) {
	s.renderTo(w, r, "image/png", s.services.Storefront.RenderPreview)
}

type renderFunc func(ctx context.Context, w io.Writer, idOrSlug string, width int) error

// renderTo buffers the rendered body so failures still get a proper status.
func (s *Server) renderTo(w http.ResponseWriter, r *http.Request, contentType string, render renderFunc) {
	width := 0
	if raw := r.URL.Query().Get("width"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "width must be an integer", s.logger)
			return
		}
		width = n
	}

	var buf bytes.Buffer
	if err := render(r.Context(), &buf, chi.URLParam(r, "idOrSlug"), width); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("client went away during render", "path", r.URL.Path, "error", err)
	}
}
