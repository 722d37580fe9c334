package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/showtracker/internal/apperror"
	"github.com/sakif/showtracker/internal/metadata"
)

const msgQueryRequired = "Query parameter is required"

// MetadataService fronts the external metadata provider: title search and
// poster verification.
type MetadataService struct {
	provider metadata.Provider
	verifier metadata.ImageVerifier
	logger   *slog.Logger
}

// NewMetadataService wires the provider and verifier. A nil verifier accepts
// every image.
func NewMetadataService(provider metadata.Provider, verifier metadata.ImageVerifier, logger *slog.Logger) *MetadataService {
	if verifier == nil {
		verifier = metadata.AcceptAll{}
	}
	return &MetadataService{
		provider: provider,
		verifier: verifier,
		logger:   logger,
	}
}

// Search validates the request and forwards it to the provider.
//
// The query is checked before anything else so a blank search never costs a
// provider round trip. Provider failures come back as upstream errors carrying
// the provider's message.
func (s *MetadataService) Search(ctx context.Context, query, year, searchType string) ([]json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.ValidationFailed("query", msgQueryRequired)
	}

	normalized, err := metadata.NormalizeType(searchType)
	if err != nil {
		return nil, apperror.ValidationFailed("type", err.Error())
	}

	req := metadata.SearchRequest{
		Query: query,
		Year:  strings.TrimSpace(year),
		Type:  normalized,
	}

	s.logger.Debug("searching metadata provider",
		slog.String("query", req.Query),
		slog.String("year", req.Year),
		slog.String("type", req.Type),
	)

	results, err := s.provider.Search(ctx, req)
	if err != nil {
		s.logger.Error("metadata search failed",
			slog.String("query", req.Query),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Upstream(err)
	}
	if results == nil {
		results = []json.RawMessage{}
	}

	s.logger.Debug("metadata search finished",
		slog.String("query", req.Query),
		slog.Int("results", len(results)),
	)
	return results, nil
}

// VerifyImage asks the verifier whether imageURL plausibly shows title.
func (s *MetadataService) VerifyImage(ctx context.Context, title, imageURL string) (bool, error) {
	ok, err := s.verifier.Verify(ctx, strings.TrimSpace(title), strings.TrimSpace(imageURL))
	if err != nil {
		return false, fmt.Errorf("verifying image: %w", err)
	}
	return ok, nil
}
