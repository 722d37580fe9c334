package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/showtracker/internal/model"
	"github.com/sakif/showtracker/internal/service"
)

// MediaHandler serves the watchlist endpoints.
//
// None of these routes require a session: the username in the path or body
// is taken at face value, matching the behaviour existing clients rely on.
type MediaHandler struct {
	media  *service.MediaService
	logger *slog.Logger
}

func NewMediaHandler(media *service.MediaService, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		media:  media,
		logger: logger,
	}
}

// addMediaRequest mirrors what the front end posts after a search. id and
// year come straight from the provider and may be numbers or strings.
type addMediaRequest struct {
	ID         model.FlexString  `json:"id"`
	Username   string            `json:"username"`
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	Year       *model.FlexString `json:"year"`
	Overview   *string           `json:"overview"`
	PosterPath *string           `json:"poster_path"`

	Status          *string `json:"status"`
	WatchedEpisodes *int    `json:"watched_episodes"`
	TotalEpisodes   *int    `json:"total_episodes"`
	Progress        *int    `json:"progress"`
	Season          *int    `json:"season"`
	Episode         *int    `json:"episode"`
}

func (req addMediaRequest) input() service.AddMediaInput {
	in := service.AddMediaInput{
		ID:              req.ID.String(),
		Username:        req.Username,
		Type:            req.Type,
		Title:           req.Title,
		Overview:        req.Overview,
		PosterPath:      req.PosterPath,
		Status:          req.Status,
		WatchedEpisodes: req.WatchedEpisodes,
		TotalEpisodes:   req.TotalEpisodes,
		Progress:        req.Progress,
		Season:          req.Season,
		Episode:         req.Episode,
	}
	if req.Year != nil {
		year := req.Year.String()
		in.Year = &year
	}
	return in
}

// updateMediaRequest carries the fields to change plus the context used for
// the activity message. Username, type and title are never written to the row.
type updateMediaRequest struct {
	model.MediaUpdate
	Username string `json:"username"`
	Type     string `json:"type"`
	Title    string `json:"title"`
}

// AddMediaResponse is the body of a successful add.
type AddMediaResponse struct {
	Message string       `json:"message"`
	Media   *model.Media `json:"media"`
}

// MediaListResponse is the body of GET /media/{username}.
type MediaListResponse struct {
	Media []model.Media `json:"media"`
}

// HandleAdd adds a title to a user's list.
//
// HTTP: POST /media
// REQUEST BODY: {"id": 603, "username": "...", "type": "movie", "title": "...", ...}
// RESPONSE: 201 {"message": "Media added successfully", "media": {...}}
func (h *MediaHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	req := decodeJSON[addMediaRequest](r, h.logger)

	h.logger.Debug("add media request",
		slog.String("id", req.ID.String()),
		slog.String("username", req.Username),
		slog.String("type", req.Type),
	)

	media, err := h.media.Add(r.Context(), req.input())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, AddMediaResponse{
		Message: "Media added successfully",
		Media:   media,
	})
}

// HandleList returns a user's list.
//
// HTTP: GET /media/{username}
func (h *MediaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	media, err := h.media.ListForUser(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MediaListResponse{Media: media})
}

// HandleUpdate applies a partial update.
//
// HTTP: PUT /media/{id}
// REQUEST BODY: {"watched_episodes": 5, "username": "...", "type": "tv", "title": "..."}
// RESPONSE: 200 {"message": "Media updated successfully"}
//
// A JSON null is treated the same as an omitted field.
func (h *MediaHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	req := decodeJSON[updateMediaRequest](r, h.logger)

	actor := service.Actor{
		Username: req.Username,
		Type:     req.Type,
		Title:    req.Title,
	}
	if err := h.media.Update(r.Context(), id, req.MediaUpdate, actor); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Media updated successfully"})
}

// HandleDelete removes a title.
//
// HTTP: DELETE /media/{id}
// RESPONSE: 200 {"message": "Media deleted"}
func (h *MediaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.media.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Media deleted"})
}
