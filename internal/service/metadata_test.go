package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/showtracker/internal/apperror"
	"github.com/sakif/showtracker/internal/metadata"
)

type rejectAll struct{}

func (rejectAll) Verify(context.Context, string, string) (bool, error) {
	return false, nil
}

func TestSearch_EmptyQueryNeverReachesProvider(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewMetadataService(provider, nil, testLogger())

	for _, q := range []string{"", "   ", "\t"} {
		_, err := svc.Search(context.Background(), q, "", "")
		require.ErrorIs(t, err, apperror.ErrValidation)
		assert.Equal(t, "Query parameter is required", err.Error())
	}
	assert.Empty(t, provider.calls)
}

func TestSearch_NormalizesRequest(t *testing.T) {
	provider := &fakeProvider{results: []json.RawMessage{json.RawMessage(`{"id":1}`)}}
	svc := NewMetadataService(provider, nil, testLogger())

	results, err := svc.Search(context.Background(), "  dune ", " 2021 ", "show")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	require.Len(t, provider.calls, 1)
	assert.Equal(t, metadata.SearchRequest{Query: "dune", Year: "2021", Type: metadata.TypeTV}, provider.calls[0])
}

func TestSearch_DefaultTypeIsMulti(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewMetadataService(provider, nil, testLogger())

	_, err := svc.Search(context.Background(), "dune", "", "")
	require.NoError(t, err)
	assert.Equal(t, metadata.TypeMulti, provider.calls[0].Type)
}

func TestSearch_UnknownTypeIsValidationError(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewMetadataService(provider, nil, testLogger())

	_, err := svc.Search(context.Background(), "dune", "", "person")
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Empty(t, provider.calls)
}

func TestSearch_ProviderFailureIsUpstream(t *testing.T) {
	cause := errors.New("tmdb: search returned status 401")
	svc := NewMetadataService(&fakeProvider{err: cause}, nil, testLogger())

	_, err := svc.Search(context.Background(), "dune", "", "movie")
	require.ErrorIs(t, err, apperror.ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause.Error(), err.Error())
}

func TestVerifyImage(t *testing.T) {
	ctx := context.Background()

	ok, err := NewMetadataService(&fakeProvider{}, nil, testLogger()).VerifyImage(ctx, "Dune", "http://x/p.jpg")
	require.NoError(t, err)
	assert.True(t, ok, "default verifier accepts every image")

	ok, err = NewMetadataService(&fakeProvider{}, rejectAll{}, testLogger()).VerifyImage(ctx, "Dune", "http://x/p.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}
