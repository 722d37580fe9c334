package model

import "time"

// Media types as stored in the type column. The bundled front end uses "tv"
// for shows; any non-empty value is accepted on insert.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// DefaultStatus is the watch state assigned when an add request omits one.
const DefaultStatus = "to-watch"

// Media is a tracked movie or show on a user's list.
//
// ID is the metadata provider's identifier and is the table's sole primary
// key, so a given ID can be tracked by only one user at a time.
//
// NULLABLE COLUMNS:
// Year, Overview, PosterPath, Season and Episode may be NULL in the store.
// Pointer fields scan NULL as nil and encode as JSON null.
type Media struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Type            string    `json:"type"`
	Title           string    `json:"title"`
	Year            *string   `json:"year"`
	Overview        *string   `json:"overview"`
	PosterPath      *string   `json:"poster_path"`
	Status          string    `json:"status"`
	WatchedEpisodes int       `json:"watched_episodes"`
	TotalEpisodes   int       `json:"total_episodes"`
	Progress        int       `json:"progress"`
	Season          *int      `json:"season"`
	Episode         *int      `json:"episode"`
	AddedDate       time.Time `json:"added_date"`
}

// MediaUpdate is a partial update. A nil field is left untouched.
type MediaUpdate struct {
	Status          *string `json:"status"`
	WatchedEpisodes *int    `json:"watched_episodes"`
	Progress        *int    `json:"progress"`
	Season          *int    `json:"season"`
	Episode         *int    `json:"episode"`
}

// IsEmpty reports whether no recognised field was supplied.
func (u MediaUpdate) IsEmpty() bool {
	return u.Status == nil &&
		u.WatchedEpisodes == nil &&
		u.Progress == nil &&
		u.Season == nil &&
		u.Episode == nil
}
