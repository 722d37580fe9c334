package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/sakif/showtracker/internal/apperror"
	"github.com/sakif/showtracker/internal/metadata"
	"github.com/sakif/showtracker/internal/model"
)

// =========================================================================
// FAKES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces and
// the metadata provider. Each one mimics the error contract of the real
// implementation (apperror conflicts and not-founds) and exposes an *Err
// field to simulate a store failure.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by username

	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict("Username or Email already exists")
		}
	}
	user.CreatedAt = time.Now().UTC()
	stored := *user
	f.users[user.Username] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	result := *u
	return &result, nil
}

// fakeMediaRepo implements both MediaRepository and ActivityRepository, the
// same way *sqlite.DB does, so add/update activities are observable.
type fakeMediaRepo struct {
	mu         sync.Mutex
	media      map[string]*model.Media
	order      []string
	activities []model.Activity
	nextID     int64
	clock      time.Time

	createErr error
	updateErr error
	deleteErr error
	listErr   error
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{
		media: make(map[string]*model.Media),
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock so every record gets a distinct timestamp.
func (f *fakeMediaRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeMediaRepo) appendActivity(a *model.Activity) {
	f.nextID++
	a.ID = f.nextID
	a.Timestamp = f.tick()
	f.activities = append(f.activities, *a)
}

func (f *fakeMediaRepo) CreateMedia(_ context.Context, media *model.Media, activity *model.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.media[media.ID]; ok {
		return apperror.Conflict("Media already exists")
	}
	media.AddedDate = f.tick()
	stored := *media
	f.media[media.ID] = &stored
	f.order = append(f.order, media.ID)
	f.appendActivity(activity)
	return nil
}

func (f *fakeMediaRepo) GetMedia(_ context.Context, id string) (*model.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.media[id]
	if !ok {
		return nil, apperror.NotFound("Media not found")
	}
	result := *m
	return &result, nil
}

func (f *fakeMediaRepo) ListMediaByUser(_ context.Context, username string) ([]model.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	result := []model.Media{}
	for _, id := range f.order {
		if m := f.media[id]; m.Username == username {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (f *fakeMediaRepo) UpdateMedia(_ context.Context, id string, upd model.MediaUpdate, activity *model.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}
	if upd.IsEmpty() {
		return apperror.ValidationFailed("", "No updates provided")
	}
	m, ok := f.media[id]
	if !ok {
		return apperror.NotFound("Media not found")
	}
	if upd.Status != nil {
		m.Status = *upd.Status
	}
	if upd.WatchedEpisodes != nil {
		m.WatchedEpisodes = *upd.WatchedEpisodes
	}
	if upd.Progress != nil {
		m.Progress = *upd.Progress
	}
	if upd.Season != nil {
		m.Season = upd.Season
	}
	if upd.Episode != nil {
		m.Episode = upd.Episode
	}
	f.appendActivity(activity)
	return nil
}

func (f *fakeMediaRepo) DeleteMedia(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.media[id]; !ok {
		return apperror.NotFound("Media not found")
	}
	delete(f.media, id)
	f.order = slices.DeleteFunc(f.order, func(s string) bool { return s == id })
	return nil
}

func (f *fakeMediaRepo) ListActivities(_ context.Context, username string, limit int) ([]model.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	result := []model.Activity{}
	for i := len(f.activities) - 1; i >= 0 && len(result) < limit; i-- {
		if f.activities[i].Username == username {
			result = append(result, f.activities[i])
		}
	}
	return result, nil
}

func (f *fakeMediaRepo) activityCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.activities)
}

// fakeProvider records every request and returns results or err.
type fakeProvider struct {
	calls   []metadata.SearchRequest
	results []json.RawMessage
	err     error
}

func (f *fakeProvider) Search(_ context.Context, req metadata.SearchRequest) ([]json.RawMessage, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func ptr[T any](v T) *T {
	return &v
}
