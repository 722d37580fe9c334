// Package tmdb is the metadata.Provider backed by The Movie Database HTTP API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/sakif/showtracker/internal/metadata"
)

var _ metadata.Provider = (*Client)(nil)

// Client calls GET {base}/search/{type}.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

type searchResponse struct {
	Results []json.RawMessage `json:"results"`
}

// New builds a Client from cfg, filling unset fields from DefaultConfig.
//
// With an AccessToken the underlying transport is an oauth2.Transport over a
// static token source, which adds "Authorization: Bearer <token>" to every
// request. Without one, a plain http.Client is used and the api_key query
// parameter carries the credential.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	httpClient := &http.Client{}
	if cfg.AccessToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AccessToken,
			TokenType:   "Bearer",
		})
		httpClient = oauth2.NewClient(context.Background(), src)
	}
	httpClient.Timeout = cfg.Timeout

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
	}
}

// Search runs a search and returns TMDB's result objects verbatim.
//
// Year is forwarded under the type-specific parameter name:
// "first_air_date_year" for tv, "year" for movie. The multi endpoint has no
// year filter, so it is dropped there.
func (c *Client) Search(ctx context.Context, req metadata.SearchRequest) ([]json.RawMessage, error) {
	mediaType, err := metadata.NormalizeType(req.Type)
	if err != nil {
		return nil, fmt.Errorf("tmdb: %w", err)
	}

	q := url.Values{}
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	q.Set("query", req.Query)
	if year := strings.TrimSpace(req.Year); year != "" {
		switch mediaType {
		case metadata.TypeTV:
			q.Set("first_air_date_year", year)
		case metadata.TypeMovie:
			q.Set("year", year)
		}
	}

	endpoint := c.baseURL + "/search/" + mediaType + "?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: building request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// *url.Error repeats the full URL, api_key included. Keep only the cause.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("tmdb: search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tmdb: search returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("tmdb: decoding search response: %w", err)
	}

	if body.Results == nil {
		body.Results = []json.RawMessage{}
	}
	return body.Results, nil
}
