package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/showtracker/internal/apperror"
	"github.com/sakif/showtracker/internal/model"
	"github.com/sakif/showtracker/internal/repository"
)

var _ repository.MediaRepository = (*DB)(nil)

// mediaColumns is shared by every SELECT so Scan order stays in one place.
const mediaColumns = `id, username, type, title, year, overview, poster_path, status,
	watched_episodes, total_episodes, progress, season, episode, added_date`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMedia(s scanner) (*model.Media, error) {
	var (
		m               model.Media
		watched, total  sql.NullInt64
		progress        sql.NullInt64
		status, typ     sql.NullString
		title, username sql.NullString
	)
	if err := s.Scan(
		&m.ID, &username, &typ, &title, &m.Year, &m.Overview, &m.PosterPath, &status,
		&watched, &total, &progress, &m.Season, &m.Episode, &m.AddedDate,
	); err != nil {
		return nil, err
	}

	// Rows written by older builds may carry NULL counters; expose them as
	// zero so the JSON shape is stable.
	m.Username = username.String
	m.Type = typ.String
	m.Title = title.String
	m.Status = status.String
	m.WatchedEpisodes = int(watched.Int64)
	m.TotalEpisodes = int(total.Int64)
	m.Progress = int(progress.Int64)
	return &m, nil
}

// CreateMedia inserts a media row and its "add" activity in one transaction.
//
// A primary-key collision (the id is already on ANY user's list) comes back
// as apperror.ErrConflict and nothing is written.
func (db *DB) CreateMedia(ctx context.Context, media *model.Media, activity *model.Activity) error {
	now := time.Now().UTC()
	media.AddedDate = now

	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO media (`+mediaColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			media.ID,
			media.Username,
			media.Type,
			media.Title,
			media.Year,
			media.Overview,
			media.PosterPath,
			media.Status,
			media.WatchedEpisodes,
			media.TotalEpisodes,
			media.Progress,
			media.Season,
			media.Episode,
			media.AddedDate,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("Media already exists")
			}
			return fmt.Errorf("sqlite: inserting media %s: %w", media.ID, err)
		}

		return insertActivity(ctx, tx, activity, now)
	})
}

// GetMedia retrieves one media row by id.
func (db *DB) GetMedia(ctx context.Context, id string) (*model.Media, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)

	m, err := scanMedia(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Media not found")
		}
		return nil, fmt.Errorf("sqlite: getting media %s: %w", id, err)
	}
	return m, nil
}

// ListMediaByUser returns every media row owned by username in rowid
// (insertion) order. There is no pagination.
func (db *DB) ListMediaByUser(ctx context.Context, username string) ([]model.Media, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE username = ? ORDER BY rowid`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing media for %s: %w", username, err)
	}
	defer rows.Close()

	media := make([]model.Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning media row: %w", err)
		}
		media = append(media, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating media: %w", err)
	}

	return media, nil
}

// UpdateMedia applies a partial update and appends the "update" activity in
// one transaction.
//
// The SET clause is built only from the non-nil fields of update. Column
// names come from this function, never from the request, so the
// fmt.Sprintf below cannot inject SQL; values still go through placeholders.
func (db *DB) UpdateMedia(ctx context.Context, id string, update model.MediaUpdate, activity *model.Activity) error {
	var (
		sets []string
		args []any
	)
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *update.Status)
	}
	if update.WatchedEpisodes != nil {
		sets = append(sets, "watched_episodes = ?")
		args = append(args, *update.WatchedEpisodes)
	}
	if update.Progress != nil {
		sets = append(sets, "progress = ?")
		args = append(args, *update.Progress)
	}
	if update.Season != nil {
		sets = append(sets, "season = ?")
		args = append(args, *update.Season)
	}
	if update.Episode != nil {
		sets = append(sets, "episode = ?")
		args = append(args, *update.Episode)
	}
	if len(sets) == 0 {
		return apperror.ValidationFailed("", "No updates provided")
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE media SET %s WHERE id = ?`, strings.Join(sets, ", "))

	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("sqlite: updating media %s: %w", id, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("Media not found")
		}

		return insertActivity(ctx, tx, activity, time.Now().UTC())
	})
}

// DeleteMedia hard-deletes a media row. No activity is written.
func (db *DB) DeleteMedia(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM media WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting media %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Media not found")
	}

	return nil
}
