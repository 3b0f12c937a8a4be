package providers

import (
	"context"

	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/internal/errors"
	"github.com/magnetarr/magnetarr/internal/models"
	"github.com/magnetarr/magnetarr/pkg/infohash"
	"github.com/magnetarr/magnetarr/pkg/logger"
	"github.com/magnetarr/magnetarr/pkg/ratelimiter"
)

// Aggregator queries providers in a fixed order. A provider failure is
// logged and skipped; the sequence fails as a whole only when the full pass
// yields nothing, whether the providers errored or came back empty.
type Aggregator struct {
	providers   []Provider
	accumulate  bool
	rateLimiter *ratelimiter.TokenBucket
	logger      logger.Logger
}

// NewAggregator builds an aggregator over providers in the given order.
// When accumulate is true every provider is queried and the results merged;
// otherwise the sequence stops at the first provider returning results.
func NewAggregator(providers []Provider, accumulate bool, log logger.Logger) *Aggregator {
	return &Aggregator{
		providers:   providers,
		accumulate:  accumulate,
		rateLimiter: ratelimiter.NewTokenBucket(constants.ProviderRateBurst, constants.ProviderRateLimit),
		logger:      log,
	}
}

// Search runs the failover sequence for query. Results keep provider order;
// entries without a usable info hash are dropped.
func (a *Aggregator) Search(ctx context.Context, query models.MovieQuery) ([]models.RawResult, error) {
	var collected []models.RawResult

	for _, provider := range a.providers {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("search cancelled")
		}

		a.rateLimiter.Wait()

		results, err := a.searchOne(ctx, provider, query)
		if err != nil {
			a.logger.Warnf("[Aggregator] provider %s failed: %v", provider.Name(), err)
			continue
		}

		a.logger.Debugf("[Aggregator] provider %s returned %d results", provider.Name(), len(results))
		collected = append(collected, results...)

		if !a.accumulate && len(collected) > 0 {
			break
		}
	}

	if len(collected) == 0 {
		return nil, errors.NewNetwork("no provider available", nil)
	}
	return collected, nil
}

// searchOne queries a single provider under its own timeout and filters out
// results whose hash cannot be normalized.
func (a *Aggregator) searchOne(ctx context.Context, provider Provider, query models.MovieQuery) ([]models.RawResult, error) {
	providerCtx, cancel := context.WithTimeout(ctx, constants.ProviderTimeout)
	defer cancel()

	results, err := provider.Search(providerCtx, query)
	if err != nil {
		return nil, err
	}

	valid := results[:0]
	for _, r := range results {
		hash, ok := infohash.FromCandidates(r.Hash, r.MagnetURI)
		if !ok {
			continue
		}
		r.Hash = hash
		valid = append(valid, r)
	}
	return valid, nil
}
