// Package services wires the acquisition pipeline together.
package services

import (
	"net/http"

	"github.com/magnetarr/magnetarr/internal/cache"
	"github.com/magnetarr/magnetarr/internal/config"
	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/internal/database"
	"github.com/magnetarr/magnetarr/internal/providers"
	"github.com/magnetarr/magnetarr/pkg/debrid"
	"github.com/magnetarr/magnetarr/pkg/httputil"
	"github.com/magnetarr/magnetarr/pkg/logger"
)

// Container holds all initialized services.
type Container struct {
	Search      *SearchService
	Acquisition *AcquisitionController
	FilterSort  *FilterSortEngine
	Cleanup     *CleanupService
	Debrid      *debrid.Client
	Cache       *cache.LRUCache
	DB          database.Database
	Config      *config.Config
	Logger      logger.Logger
}

// NewContainer builds the service graph from configuration. Provider HTTP
// traffic and acquisition service traffic both honor the relay setting.
func NewContainer(cfg *config.Config, db database.Database, log logger.Logger) *Container {
	var providerClient *http.Client
	if cfg.RelayURL != "" {
		providerClient = httputil.NewRelayClient(cfg.RelayURL, constants.ProviderTimeout)
	} else {
		providerClient = httputil.NewHTTPClient(constants.ProviderTimeout)
	}

	debridClient := debrid.NewClientWithRelay(cfg.RelayURL, constants.DebridAPITimeout)

	resultCache := cache.New(cfg.CacheSize, cfg.CacheTTL)

	aggregator := providers.NewAggregator(
		buildProviders(cfg, providerClient),
		cfg.AccumulateProviders,
		log,
	)

	availability := NewAvailabilityChecker(debridClient, log)

	return &Container{
		Search:      NewSearchService(resultCache, aggregator, availability, cfg.APIKeyDebrid, log),
		Acquisition: NewAcquisitionController(debridClient, db, cfg.APIKeyDebrid, log),
		FilterSort:  NewFilterSortEngine(cfg.MaxResults),
		Cleanup:     NewCleanupService(debridClient, db, cfg.APIKeyDebrid, log),
		Debrid:      debridClient,
		Cache:       resultCache,
		DB:          db,
		Config:      cfg,
		Logger:      log,
	}
}

// buildProviders instantiates providers in the configured failover order.
func buildProviders(cfg *config.Config, client *http.Client) []providers.Provider {
	built := make([]providers.Provider, 0, len(cfg.ProviderOrder))
	for _, name := range cfg.ProviderOrder {
		switch name {
		case constants.ProviderApiBay:
			built = append(built, providers.NewApiBay(client))
		case constants.ProviderTorrentsCSV:
			built = append(built, providers.NewTorrentsCSV(client))
		case constants.ProviderEZTV:
			built = append(built, providers.NewEZTV(client))
		case constants.ProviderYGG:
			built = append(built, providers.NewYGG(client, cfg.YGGPasskey))
		}
	}
	return built
}
