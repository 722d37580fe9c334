package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/showtracker/internal/model"
	"github.com/sakif/showtracker/internal/repository"
)

const (
	DefaultActivityLimit = 5
	MaxActivityLimit     = 100
)

// ActivityService reads the append-only activity log. Writes happen inside
// the media repository as part of add and update.
type ActivityService struct {
	repo   repository.ActivityRepository
	logger *slog.Logger
}

func NewActivityService(repo repository.ActivityRepository, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		repo:   repo,
		logger: logger,
	}
}

// ParseLimit turns the raw ?limit= value into a usable limit.
// Missing, non-numeric and non-positive values give DefaultActivityLimit;
// anything above MaxActivityLimit is clamped.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return DefaultActivityLimit
	}
	return min(n, MaxActivityLimit)
}

// Recent returns up to limit activities for username, newest first.
func (s *ActivityService) Recent(ctx context.Context, username string, limit int) ([]model.Activity, error) {
	if limit < 1 {
		limit = DefaultActivityLimit
	}
	limit = min(limit, MaxActivityLimit)

	activities, err := s.repo.ListActivities(ctx, strings.TrimSpace(username), limit)
	if err != nil {
		s.logger.Error("failed to list activities",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing activities for %s: %w", username, err)
	}

	s.logger.Debug("activities listed",
		slog.String("username", username),
		slog.Int("limit", limit),
		slog.Int("count", len(activities)),
	)
	return activities, nil
}
