// Package metadata defines the contract with the external movie/TV metadata
// provider and the image verification hook.
//
// The concrete provider is TMDB (metadata/tmdb). Services depend only on the
// interfaces here, so tests substitute a fake and never touch the network.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Search types understood by the provider.
const (
	TypeMulti = "multi"
	TypeMovie = "movie"
	TypeTV    = "tv"
)

// SearchRequest is one free-text search.
type SearchRequest struct {
	Query string
	Year  string // optional; ignored for TypeMulti
	Type  string // one of the Type* constants
}

// Provider searches the metadata service. Results are the provider's objects,
// untouched, so clients see every field the provider returns.
type Provider interface {
	Search(ctx context.Context, req SearchRequest) ([]json.RawMessage, error)
}

// NormalizeType maps a caller-supplied type to a provider type.
// Empty means TypeMulti; "show" is accepted as an alias for TypeTV.
func NormalizeType(t string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", TypeMulti:
		return TypeMulti, nil
	case TypeMovie:
		return TypeMovie, nil
	case TypeTV, "show":
		return TypeTV, nil
	default:
		return "", fmt.Errorf("unsupported search type %q", t)
	}
}

// ImageVerifier decides whether an image plausibly belongs to a title.
type ImageVerifier interface {
	Verify(ctx context.Context, title, imageURL string) (bool, error)
}

// AcceptAll is the placeholder verifier: every image matches.
type AcceptAll struct{}

func (AcceptAll) Verify(context.Context, string, string) (bool, error) {
	return true, nil
}
