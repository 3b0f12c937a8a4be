package providers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnetarr/magnetarr/internal/errors"
	"github.com/magnetarr/magnetarr/internal/models"
	"github.com/magnetarr/magnetarr/pkg/logger"
)

type stubProvider struct {
	name    string
	results []models.RawResult
	err     error
	calls   int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(ctx context.Context, query models.MovieQuery) ([]models.RawResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func rawResult(provider string, suffix byte) models.RawResult {
	hash := ""
	for i := 0; i < 40; i++ {
		hash += string(suffix)
	}
	return models.RawResult{
		Title:    fmt.Sprintf("%s release", provider),
		Hash:     hash,
		Provider: provider,
	}
}

func testQuery() models.MovieQuery {
	return models.MovieQuery{Title: "Cosmos Laundromat", Year: "2015"}
}

func TestAggregatorFailover(t *testing.T) {
	broken := &stubProvider{name: "broken", err: fmt.Errorf("connection refused")}
	working := &stubProvider{name: "working", results: []models.RawResult{rawResult("working", 'a')}}

	agg := NewAggregator([]Provider{broken, working}, false, logger.New())

	results, err := agg.Search(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "working", results[0].Provider)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, working.calls)
}

func TestAggregatorFirstSuccessStops(t *testing.T) {
	first := &stubProvider{name: "first", results: []models.RawResult{rawResult("first", 'a')}}
	second := &stubProvider{name: "second", results: []models.RawResult{rawResult("second", 'b')}}

	agg := NewAggregator([]Provider{first, second}, false, logger.New())

	results, err := agg.Search(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, second.calls, "later providers should not run after a hit")
}

func TestAggregatorAccumulates(t *testing.T) {
	first := &stubProvider{name: "first", results: []models.RawResult{rawResult("first", 'a')}}
	second := &stubProvider{name: "second", results: []models.RawResult{rawResult("second", 'b')}}

	agg := NewAggregator([]Provider{first, second}, true, logger.New())

	results, err := agg.Search(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Provider)
	assert.Equal(t, "second", results[1].Provider)
}

func TestAggregatorAllProvidersFail(t *testing.T) {
	first := &stubProvider{name: "first", err: fmt.Errorf("timeout")}
	second := &stubProvider{name: "second", err: fmt.Errorf("HTTP 503")}

	agg := NewAggregator([]Provider{first, second}, true, logger.New())

	_, err := agg.Search(context.Background(), testQuery())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNetwork))
}

func TestAggregatorAllEmptyFails(t *testing.T) {
	first := &stubProvider{name: "first"}
	second := &stubProvider{name: "second"}

	agg := NewAggregator([]Provider{first, second}, true, logger.New())

	_, err := agg.Search(context.Background(), testQuery())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNetwork))
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestAggregatorMixedFailureAndEmptyFails(t *testing.T) {
	failing := &stubProvider{name: "failing", err: fmt.Errorf("timeout")}
	empty := &stubProvider{name: "empty"}

	agg := NewAggregator([]Provider{failing, empty}, true, logger.New())

	_, err := agg.Search(context.Background(), testQuery())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNetwork))
}

func TestAggregatorDropsUnusableHashes(t *testing.T) {
	provider := &stubProvider{
		name: "mixed",
		results: []models.RawResult{
			{Title: "good", Hash: "C9E15763F722F23E98A29DECDFAE341B98D53056", Provider: "mixed"},
			{Title: "bad", Hash: "not-a-hash", Provider: "mixed"},
			{Title: "magnet only", MagnetURI: "magnet:?xt=urn:btih:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Provider: "mixed"},
		},
	}

	agg := NewAggregator([]Provider{provider}, false, logger.New())

	results, err := agg.Search(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c9e15763f722f23e98a29decdfae341b98d53056", results[0].Hash)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", results[1].Hash)
}

func TestAggregatorCancelledContext(t *testing.T) {
	provider := &stubProvider{name: "never", results: []models.RawResult{rawResult("never", 'a')}}
	agg := NewAggregator([]Provider{provider}, false, logger.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.Search(ctx, testQuery())
	require.Error(t, err)
	assert.True(t, errors.IsCancelled(err))
	assert.Equal(t, 0, provider.calls)
}
