package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/showtracker/internal/model"
	"github.com/sakif/showtracker/internal/repository"
)

var _ repository.ActivityRepository = (*DB)(nil)

// insertActivity appends an activity row inside the caller's transaction and
// fills in the generated ID and timestamp.
func insertActivity(ctx context.Context, tx *sql.Tx, a *model.Activity, at time.Time) error {
	a.Timestamp = at

	result, err := tx.ExecContext(ctx,
		`INSERT INTO activities (username, media_id, media_type, media_title, action, message, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Username,
		a.MediaID,
		a.MediaType,
		a.MediaTitle,
		a.Action,
		a.Message,
		a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting %s activity for media %s: %w", a.Action, a.MediaID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading activity id: %w", err)
	}
	a.ID = id
	return nil
}

// ListActivities returns the newest activities for username.
//
// Timestamps can tie (two writes in the same instant), so the
// autoincrement id breaks ties: a higher id is always the later write.
func (db *DB) ListActivities(ctx context.Context, username string, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		return []model.Activity{}, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, username, media_id, media_type, media_title, action, message, timestamp
		 FROM activities
		 WHERE username = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT ?`,
		username,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activities for %s: %w", username, err)
	}
	defer rows.Close()

	activities := make([]model.Activity, 0, limit)
	for rows.Next() {
		var (
			a                     model.Activity
			user, mediaID         sql.NullString
			mediaType, mediaTitle sql.NullString
			action, message       sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &user, &mediaID, &mediaType, &mediaTitle, &action, &message, &a.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		a.Username = user.String
		a.MediaID = mediaID.String
		a.MediaType = mediaType.String
		a.MediaTitle = mediaTitle.String
		a.Action = action.String
		a.Message = message.String
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activities: %w", err)
	}

	return activities, nil
}
