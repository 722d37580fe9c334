package model

import "time"

// Activity actions.
const (
	ActionAdd    = "add"
	ActionUpdate = "update"
)

// Activity is an append-only audit record written alongside media adds and
// updates. Rows are never modified or deleted.
type Activity struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	MediaID    string    `json:"media_id"`
	MediaType  string    `json:"media_type"`
	MediaTitle string    `json:"media_title"`
	Action     string    `json:"action"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}
