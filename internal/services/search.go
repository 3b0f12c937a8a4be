package services

import (
	"context"
	"sync"

	"github.com/magnetarr/magnetarr/internal/cache"
	"github.com/magnetarr/magnetarr/internal/errors"
	"github.com/magnetarr/magnetarr/internal/models"
	"github.com/magnetarr/magnetarr/pkg/logger"
)

// searchAggregator is the provider failover sequence as seen by the search
// pipeline.
type searchAggregator interface {
	Search(ctx context.Context, query models.MovieQuery) ([]models.RawResult, error)
}

// SearchService runs the search pipeline: result cache, provider failover,
// normalization, classification and availability lookup. A new search
// supersedes any still-running one; the superseded call is cancelled and its
// results are never written to the cache.
type SearchService struct {
	cache        *cache.LRUCache
	aggregator   searchAggregator
	availability *AvailabilityChecker
	classifier   *classifier
	apiKey       string
	logger       logger.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

func NewSearchService(resultCache *cache.LRUCache, aggregator searchAggregator, availability *AvailabilityChecker, apiKey string, log logger.Logger) *SearchService {
	return &SearchService{
		cache:        resultCache,
		aggregator:   aggregator,
		availability: availability,
		classifier:   newClassifier(),
		apiKey:       apiKey,
		logger:       log,
	}
}

// Search resolves query to a normalized, availability-annotated result set.
func (s *SearchService) Search(ctx context.Context, query models.MovieQuery) ([]models.NormalizedResult, error) {
	if query.IsZero() {
		return nil, errors.NewValidation("empty search query", nil)
	}

	cacheKey := query.CacheKey()
	if cached, found := s.cache.Get(cacheKey); found {
		if results, ok := cached.([]models.NormalizedResult); ok {
			s.logger.Debugf("[SearchService] cache hit for %s (%d results)", cacheKey, len(results))
			return results, nil
		}
	}

	searchCtx, generation := s.begin(ctx)

	raw, err := s.aggregator.Search(searchCtx, query)
	if err != nil {
		if searchCtx.Err() != nil {
			return nil, errors.NewCancelled("search superseded")
		}
		return nil, err
	}

	results := s.normalize(raw)

	hashes := make([]string, 0, len(results))
	for _, r := range results {
		hashes = append(hashes, r.Hash)
	}
	cachedState := s.availability.Check(searchCtx, s.apiKey, hashes)
	for i := range results {
		results[i].Cached = cachedState[results[i].Hash]
	}

	if searchCtx.Err() != nil {
		return nil, errors.NewCancelled("search superseded")
	}

	// Only the latest search may populate the cache; a stale pipeline that
	// finished late must not overwrite fresher results.
	s.mu.Lock()
	if generation == s.generation {
		s.cache.Set(cacheKey, results)
	}
	s.mu.Unlock()

	s.logger.Infof("[SearchService] %s resolved to %d results", cacheKey, len(results))
	return results, nil
}

// ClearCache drops all cached search results.
func (s *SearchService) ClearCache() {
	s.cache.Clear()
}

// begin registers a new pipeline run and cancels the previous one.
func (s *SearchService) begin(ctx context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	searchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.generation++
	return searchCtx, s.generation
}

// normalize converts raw provider records into display records, dropping
// duplicate hashes. The first provider to report a hash wins; later
// duplicates only contribute their tracker list.
func (s *SearchService) normalize(raw []models.RawResult) []models.NormalizedResult {
	seen := make(map[string]int, len(raw))
	results := make([]models.NormalizedResult, 0, len(raw))

	for _, r := range raw {
		if idx, dup := seen[r.Hash]; dup {
			results[idx].Trackers = mergeTrackers(results[idx].Trackers, r.Trackers)
			continue
		}

		normalized := models.NormalizedResult{
			Hash:     r.Hash,
			Title:    r.Title,
			Size:     r.Size,
			Seeders:  r.Seeders,
			Peers:    r.Peers,
			Trackers: r.Trackers,
			Provider: r.Provider,
		}
		if !r.PublishedAt.IsZero() {
			published := r.PublishedAt
			normalized.PublishedAt = &published
		}
		s.classifier.Classify(&normalized)

		seen[r.Hash] = len(results)
		results = append(results, normalized)
	}
	return results
}

func mergeTrackers(existing, extra []string) []string {
	for _, tracker := range extra {
		if !containsString(existing, tracker) {
			existing = append(existing, tracker)
		}
	}
	return existing
}
