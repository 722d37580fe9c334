// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, applies defaults, builds activity records
//	Repository (Data layer)  → reads/writes the database
//
// THE DEPENDENCY CHAIN:
//
//	server.New creates:  DB → Repository → Service → Handler
//	At runtime:          Handler calls Service calls Repository calls DB
//
// Services take repository interfaces, never *sqlite.DB, so the tests in this
// package run against in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/showtracker/internal/apperror"
	"github.com/sakif/showtracker/internal/model"
	"github.com/sakif/showtracker/internal/repository"
)

const (
	msgMissingFields   = "Missing required fields"
	msgInsertionFailed = "Database insertion failed"
	msgNoUpdates       = "No updates provided"
)

// AddMediaInput is an add request after the handler has decoded it.
// Nil pointers mean the client omitted the field.
type AddMediaInput struct {
	ID         string
	Username   string
	Type       string
	Title      string
	Year       *string
	Overview   *string
	PosterPath *string

	Status          *string
	WatchedEpisodes *int
	TotalEpisodes   *int
	Progress        *int
	Season          *int
	Episode         *int
}

// Actor describes who made an update and what they were looking at.
//
// The update endpoint does not load the row before writing it, so the
// activity message is built from whatever the client sent. Empty fields
// produce an activity with empty type or title.
type Actor struct {
	Username string
	Type     string
	Title    string
}

// MediaService handles the watchlist itself: adding, listing, updating and
// removing tracked titles, and recording an activity for each add and update.
type MediaService struct {
	repo   repository.MediaRepository
	logger *slog.Logger
}

func NewMediaService(repo repository.MediaRepository, logger *slog.Logger) *MediaService {
	return &MediaService{
		repo:   repo,
		logger: logger,
	}
}

// Add validates and stores a new media row together with its "add" activity.
//
// DEFAULTS:
//
//	status           → "to-watch"
//	watched_episodes → 0
//	total_episodes   → 0
//	progress         → 0
//
// ERRORS:
//   - id, username, type or title missing → validation "Missing required fields"
//   - id already tracked (by anyone)      → conflict "Media already exists"
//   - any other store failure             → internal "Database insertion failed"
func (s *MediaService) Add(ctx context.Context, in AddMediaInput) (*model.Media, error) {
	id := strings.TrimSpace(in.ID)
	username := strings.TrimSpace(in.Username)
	mediaType := strings.TrimSpace(in.Type)
	title := strings.TrimSpace(in.Title)

	if id == "" || username == "" || mediaType == "" || title == "" {
		return nil, apperror.ValidationFailed("", msgMissingFields)
	}

	media := &model.Media{
		ID:              id,
		Username:        username,
		Type:            mediaType,
		Title:           title,
		Year:            in.Year,
		Overview:        in.Overview,
		PosterPath:      in.PosterPath,
		Status:          model.DefaultStatus,
		WatchedEpisodes: intOr(in.WatchedEpisodes, 0),
		TotalEpisodes:   intOr(in.TotalEpisodes, 0),
		Progress:        intOr(in.Progress, 0),
		Season:          in.Season,
		Episode:         in.Episode,
	}
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		media.Status = strings.TrimSpace(*in.Status)
	}

	activity := &model.Activity{
		Username:   username,
		MediaID:    id,
		MediaType:  mediaType,
		MediaTitle: title,
		Action:     model.ActionAdd,
		Message:    fmt.Sprintf("Added %s '%s' to watchlist", mediaType, title),
	}

	if err := s.repo.CreateMedia(ctx, media, activity); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Info("media already tracked",
				slog.String("mediaID", id),
				slog.String("username", username),
			)
			return nil, err
		}
		s.logger.Error("failed to add media",
			slog.String("mediaID", id),
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Internal(msgInsertionFailed, err)
	}

	s.logger.Info("media added",
		slog.String("mediaID", id),
		slog.String("username", username),
		slog.String("type", mediaType),
	)
	return media, nil
}

// ListForUser returns every row owned by username in insertion order.
// An unknown user simply has an empty list.
func (s *MediaService) ListForUser(ctx context.Context, username string) ([]model.Media, error) {
	media, err := s.repo.ListMediaByUser(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("listing media for %s: %w", username, err)
	}
	return media, nil
}

// Update applies the supplied fields to the row with the given id and records
// an "update" activity attributed to actor.Username.
//
// The row is not loaded first and ownership is not checked: the id alone
// identifies the row. The repository applies the write and the activity in
// one transaction and reports NotFound when no row matched.
func (s *MediaService) Update(ctx context.Context, id string, upd model.MediaUpdate, actor Actor) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.NotFound("Media not found")
	}
	if upd.IsEmpty() {
		return apperror.ValidationFailed("", msgNoUpdates)
	}

	activity := &model.Activity{
		Username:   actor.Username,
		MediaID:    id,
		MediaType:  actor.Type,
		MediaTitle: actor.Title,
		Action:     model.ActionUpdate,
		Message:    fmt.Sprintf("Updated %s '%s'", actor.Type, actor.Title),
	}

	if err := s.repo.UpdateMedia(ctx, id, upd, activity); err != nil {
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrValidation) {
			return err
		}
		s.logger.Error("failed to update media",
			slog.String("mediaID", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("updating media %s: %w", id, err)
	}

	s.logger.Info("media updated",
		slog.String("mediaID", id),
		slog.String("username", actor.Username),
	)
	return nil
}

// Delete removes the row with the given id. Activities that mention it stay.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.NotFound("Media not found")
	}

	if err := s.repo.DeleteMedia(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete media",
			slog.String("mediaID", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting media %s: %w", id, err)
	}

	s.logger.Info("media deleted", slog.String("mediaID", id))
	return nil
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
