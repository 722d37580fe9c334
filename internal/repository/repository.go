// Package repository declares the storage interfaces the service layer depends on.
// The only implementation lives in repository/sqlite.
package repository

import (
	"context"

	"github.com/sakif/showtracker/internal/model"
)

type UserRepository interface {
	// CreateUser returns an apperror conflict if the username or email is taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// MediaRepository writes media rows together with their activity record.
// Implementations must commit both or neither.
type MediaRepository interface {
	CreateMedia(ctx context.Context, media *model.Media, activity *model.Activity) error
	GetMedia(ctx context.Context, id string) (*model.Media, error)
	ListMediaByUser(ctx context.Context, username string) ([]model.Media, error)
	UpdateMedia(ctx context.Context, id string, update model.MediaUpdate, activity *model.Activity) error
	DeleteMedia(ctx context.Context, id string) error
}

type ActivityRepository interface {
	// ListActivities returns at most limit rows, newest first.
	ListActivities(ctx context.Context, username string, limit int) ([]model.Activity, error)
}
