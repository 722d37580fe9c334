package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/showtracker/internal/service"
)

// SearchHandler serves metadata search and image verification.
type SearchHandler struct {
	metadata *service.MetadataService
	logger   *slog.Logger
}

func NewSearchHandler(metadata *service.MetadataService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		metadata: metadata,
		logger:   logger,
	}
}

// SearchResponse wraps the provider's result objects, passed through verbatim.
type SearchResponse struct {
	Results []json.RawMessage `json:"results"`
}

type verifyImageRequest struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// VerifyImageResponse is the body of POST /verify-image.
type VerifyImageResponse struct {
	IsMatch bool `json:"is_match"`
}

// HandleSearch searches the metadata provider.
//
// HTTP: GET /search?query=dune&year=2021&type=movie
// type is multi (default), movie or tv.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.search(w, r, q.Get("query"), q.Get("year"), q.Get("type"))
}

// HandleTMDBSearch is the same search under the path and parameter names
// the bundled front end uses.
//
// HTTP: GET /api/tmdb/search?media_type=tv&query=...&year=...
func (h *SearchHandler) HandleTMDBSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.search(w, r, q.Get("query"), q.Get("year"), q.Get("media_type"))
}

func (h *SearchHandler) search(w http.ResponseWriter, r *http.Request, query, year, searchType string) {
	results, err := h.metadata.Search(r.Context(), query, year, searchType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// HandleVerifyImage reports whether an image matches a title.
//
// HTTP: POST /verify-image
// REQUEST BODY: {"title": "...", "image_url": "..."}
// RESPONSE: 200 {"is_match": true}
func (h *SearchHandler) HandleVerifyImage(w http.ResponseWriter, r *http.Request) {
	req := decodeJSON[verifyImageRequest](r, h.logger)

	ok, err := h.metadata.VerifyImage(r.Context(), req.Title, req.ImageURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyImageResponse{IsMatch: ok})
}
