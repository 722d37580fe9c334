package tmdb

import "time"

// DefaultBaseURL is TMDB's v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// Config holds TMDB client settings.
//
// TMDB accepts two credentials: the v3 "api_key" query parameter and the v4
// "API Read Access Token" sent as a bearer token. Either (or both) may be set.
type Config struct {
	APIKey      string
	AccessToken string
	BaseURL     string

	// Timeout bounds each request end to end. A hung provider fails the
	// search instead of holding the request open.
	Timeout time.Duration
}

// DefaultConfig returns a Config with the public base URL and a 10s timeout.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: 10 * time.Second,
	}
}
