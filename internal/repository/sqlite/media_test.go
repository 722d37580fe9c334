package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/showtracker/internal/apperror"
	"github.com/sakif/showtracker/internal/model"
)

func ptr[T any](v T) *T { return &v }

func addActivity(m *model.Media) *model.Activity {
	return &model.Activity{
		Username:   m.Username,
		MediaID:    m.ID,
		MediaType:  m.Type,
		MediaTitle: m.Title,
		Action:     model.ActionAdd,
		Message:    fmt.Sprintf("Added %s '%s' to watchlist", m.Type, m.Title),
	}
}

func createTestMedia(t *testing.T, db *DB, id, username, title string) *model.Media {
	t.Helper()
	m := &model.Media{
		ID:       id,
		Username: username,
		Type:     model.MediaTypeMovie,
		Title:    title,
		Status:   model.DefaultStatus,
	}
	if err := db.CreateMedia(context.Background(), m, addActivity(m)); err != nil {
		t.Fatalf("failed to create test media: %v", err)
	}
	return m
}

func countActivities(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.conn.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&n))
	return n
}

// =========================================================================
// CREATE
// =========================================================================

func TestCreateMedia_WritesMediaAndActivity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	m := &model.Media{
		ID:         "42",
		Username:   "alice",
		Type:       model.MediaTypeMovie,
		Title:      "X",
		Year:       ptr("1999"),
		PosterPath: ptr("/poster.jpg"),
		Status:     model.DefaultStatus,
	}
	act := addActivity(m)
	require.NoError(t, db.CreateMedia(ctx, m, act))

	assert.False(t, m.AddedDate.IsZero(), "AddedDate should be set")
	assert.NotZero(t, act.ID, "activity ID should be set")

	got, err := db.GetMedia(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, "to-watch", got.Status)
	assert.Equal(t, 0, got.WatchedEpisodes)
	require.NotNil(t, got.Year)
	assert.Equal(t, "1999", *got.Year)
	assert.Nil(t, got.Overview)
	assert.Nil(t, got.Season)

	activities, err := db.ListActivities(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, model.ActionAdd, activities[0].Action)
	assert.Equal(t, "Added movie 'X' to watchlist", activities[0].Message)
}

// TestCreateMedia_SharedPrimaryKey documents that the media id is global:
// a second user cannot track an id another user already has.
func TestCreateMedia_SharedPrimaryKey(t *testing.T) {
	db := newTestDB(t)
	createTestMedia(t, db, "603", "alice", "The Matrix")

	dup := &model.Media{ID: "603", Username: "bob", Type: model.MediaTypeMovie, Title: "The Matrix"}
	err := db.CreateMedia(context.Background(), dup, addActivity(dup))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict), "error = %v, want ErrConflict", err)
}

// TestCreateMedia_RollsBackOnConflict checks that a failed insert leaves no
// orphan activity behind.
func TestCreateMedia_RollsBackOnConflict(t *testing.T) {
	db := newTestDB(t)
	createTestMedia(t, db, "603", "alice", "The Matrix")
	before := countActivities(t, db)

	dup := &model.Media{ID: "603", Username: "bob", Type: model.MediaTypeMovie, Title: "The Matrix"}
	_ = db.CreateMedia(context.Background(), dup, addActivity(dup))

	assert.Equal(t, before, countActivities(t, db))
}

// TestCreateMedia_UnknownUserAllowed: the username reference is not enforced.
func TestCreateMedia_UnknownUserAllowed(t *testing.T) {
	db := newTestDB(t)
	createTestMedia(t, db, "1", "ghost", "Nobody's Film")

	list, err := db.ListMediaByUser(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// =========================================================================
// LIST
// =========================================================================

func TestListMediaByUser_Empty(t *testing.T) {
	db := newTestDB(t)

	list, err := db.ListMediaByUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, list, "empty list must not be nil so it encodes as []")
	assert.Len(t, list, 0)
}

func TestListMediaByUser_FiltersAndKeepsInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	createTestMedia(t, db, "b", "alice", "Second letter first")
	createTestMedia(t, db, "x", "bob", "Not Alice's")
	createTestMedia(t, db, "a", "alice", "First letter second")

	list, err := db.ListMediaByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

// =========================================================================
// UPDATE
// =========================================================================

func TestUpdateMedia_OnlyTouchesSuppliedFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	m := &model.Media{
		ID: "tv-1399", Username: "alice", Type: model.MediaTypeTV, Title: "Got",
		Status: "watching", WatchedEpisodes: 2, TotalEpisodes: 73, Progress: 10,
		Season: ptr(1), Episode: ptr(3),
	}
	require.NoError(t, db.CreateMedia(ctx, m, addActivity(m)))

	act := &model.Activity{Username: "alice", MediaID: "tv-1399", Action: model.ActionUpdate}
	err := db.UpdateMedia(ctx, "tv-1399", model.MediaUpdate{WatchedEpisodes: ptr(5)}, act)
	require.NoError(t, err)

	got, err := db.GetMedia(ctx, "tv-1399")
	require.NoError(t, err)
	assert.Equal(t, 5, got.WatchedEpisodes)
	assert.Equal(t, "watching", got.Status)
	assert.Equal(t, 73, got.TotalEpisodes)
	assert.Equal(t, 10, got.Progress)
	require.NotNil(t, got.Season)
	assert.Equal(t, 1, *got.Season)
	require.NotNil(t, got.Episode)
	assert.Equal(t, 3, *got.Episode)

	assert.Equal(t, 2, countActivities(t, db))
}

func TestUpdateMedia_AllFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestMedia(t, db, "7", "alice", "Se7en")

	update := model.MediaUpdate{
		Status:          ptr("completed"),
		WatchedEpisodes: ptr(1),
		Progress:        ptr(100),
		Season:          ptr(2),
		Episode:         ptr(9),
	}
	act := &model.Activity{Username: "alice", MediaID: "7", Action: model.ActionUpdate}
	require.NoError(t, db.UpdateMedia(ctx, "7", update, act))

	got, err := db.GetMedia(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, 2, *got.Season)
	assert.Equal(t, 9, *got.Episode)
}

func TestUpdateMedia_NotFoundWritesNoActivity(t *testing.T) {
	db := newTestDB(t)
	createTestMedia(t, db, "1", "alice", "One")
	before := countActivities(t, db)

	act := &model.Activity{Username: "alice", MediaID: "missing", Action: model.ActionUpdate}
	err := db.UpdateMedia(context.Background(), "missing", model.MediaUpdate{Progress: ptr(50)}, act)

	assert.True(t, errors.Is(err, apperror.ErrNotFound), "error = %v, want ErrNotFound", err)
	assert.Equal(t, before, countActivities(t, db))
}

func TestUpdateMedia_EmptyUpdate(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateMedia(context.Background(), "1", model.MediaUpdate{}, &model.Activity{})

	assert.True(t, errors.Is(err, apperror.ErrValidation), "error = %v, want ErrValidation", err)
}

// =========================================================================
// DELETE
// =========================================================================

func TestDeleteMedia(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestMedia(t, db, "1", "alice", "One")

	require.NoError(t, db.DeleteMedia(ctx, "1"))

	_, err := db.GetMedia(ctx, "1")
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "GetMedia after delete: error = %v", err)
}

func TestDeleteMedia_NotFoundLeavesActivities(t *testing.T) {
	db := newTestDB(t)
	createTestMedia(t, db, "1", "alice", "One")
	before := countActivities(t, db)

	err := db.DeleteMedia(context.Background(), "nonexistent-id")

	assert.True(t, errors.Is(err, apperror.ErrNotFound), "error = %v, want ErrNotFound", err)
	assert.Equal(t, before, countActivities(t, db))
}

// TestMediaLifecycle runs add → list → update → delete against one row.
func TestMediaLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	m := createTestMedia(t, db, "550", "alice", "Fight Club")

	list, err := db.ListMediaByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)

	act := &model.Activity{Username: "alice", MediaID: m.ID, Action: model.ActionUpdate}
	require.NoError(t, db.UpdateMedia(ctx, m.ID, model.MediaUpdate{Status: ptr("completed")}, act))

	require.NoError(t, db.DeleteMedia(ctx, m.ID))

	list, err = db.ListMediaByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 0)

	// The activity log is append-only: deletion leaves both records.
	activities, err := db.ListActivities(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, activities, 2)
}
