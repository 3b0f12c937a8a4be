package services

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/pkg/logger"
	"github.com/magnetarr/magnetarr/pkg/ratelimiter"
)

// availabilityClient is the slice of the debrid client the checker needs.
type availabilityClient interface {
	CheckMagnets(ctx context.Context, apiKey string, hashes []string) (map[string]bool, error)
}

// AvailabilityChecker resolves which hashes are already cached on the
// acquisition service. Lookups are batched and run concurrently; a failed
// batch degrades its hashes to not-cached instead of failing the search.
type AvailabilityChecker struct {
	client  availabilityClient
	limiter *ratelimiter.TokenBucket
	logger  logger.Logger
}

func NewAvailabilityChecker(client availabilityClient, log logger.Logger) *AvailabilityChecker {
	return &AvailabilityChecker{
		client:  client,
		limiter: ratelimiter.NewTokenBucket(constants.DebridRateBurst, constants.DebridRateLimit),
		logger:  log,
	}
}

// Check returns the cached state for each distinct hash. Hashes the service
// does not mention come back false. Without an API key every hash is
// reported not-cached.
func (a *AvailabilityChecker) Check(ctx context.Context, apiKey string, hashes []string) map[string]bool {
	cached := make(map[string]bool, len(hashes))
	for _, hash := range hashes {
		cached[hash] = false
	}
	if apiKey == "" || len(cached) == 0 {
		return cached
	}

	distinct := make([]string, 0, len(cached))
	for hash := range cached {
		distinct = append(distinct, hash)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for start := 0; start < len(distinct); start += constants.AvailabilityBatchSize {
		end := start + constants.AvailabilityBatchSize
		if end > len(distinct) {
			end = len(distinct)
		}
		batch := distinct[start:end]

		g.Go(func() error {
			a.limiter.Wait()

			batchCtx, cancel := context.WithTimeout(gctx, constants.AvailabilityTimeout)
			defer cancel()

			result, err := a.client.CheckMagnets(batchCtx, apiKey, batch)
			if err != nil {
				a.logger.Warnf("[AvailabilityChecker] batch of %d hashes failed, treating as not cached: %v", len(batch), err)
				return nil
			}

			mu.Lock()
			for hash, isCached := range result {
				if _, known := cached[hash]; known {
					cached[hash] = isCached
				}
			}
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only gathers them.
	g.Wait()
	return cached
}
