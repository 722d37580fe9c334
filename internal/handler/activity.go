package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/showtracker/internal/model"
	"github.com/sakif/showtracker/internal/service"
)

type ActivityHandler struct {
	activities *service.ActivityService
	logger     *slog.Logger
}

func NewActivityHandler(activities *service.ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activities: activities,
		logger:     logger,
	}
}

// ActivityListResponse is the body of GET /activities/{username}.
type ActivityListResponse struct {
	Activities []model.Activity `json:"activities"`
}

// HandleList returns the newest activities for a user.
//
// HTTP: GET /activities/{username}?limit=5
// A missing or unusable limit falls back to 5; large values are capped.
func (h *ActivityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := service.ParseLimit(r.URL.Query().Get("limit"))

	activities, err := h.activities.Recent(r.Context(), r.PathValue("username"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActivityListResponse{Activities: activities})
}
