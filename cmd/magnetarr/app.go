package main

import (
	"context"
	"os"

	"github.com/magnetarr/magnetarr/internal/config"
	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/internal/database"
	"github.com/magnetarr/magnetarr/internal/handlers"
	"github.com/magnetarr/magnetarr/internal/services"
	"github.com/magnetarr/magnetarr/pkg/logger"
	"github.com/magnetarr/magnetarr/pkg/security"
)

var (
	appLogger        logger.Logger
	appConfig        *config.Config
	appDB            *database.BoltDB
	serviceContainer *services.Container
	handler          *handlers.Handler
)

func initializeLogger() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = constants.DefaultLogLevel
	}
	appLogger = logger.NewWithLevel(logger.ParseLevel(level))
}

func initializeConfig() {
	cfg, err := config.Load()
	if err != nil {
		appLogger.Fatalf("[App] failed to load configuration: %v", err)
	}
	appConfig = cfg

	validator := security.NewAPIKeyValidator()
	if appConfig.APIKeyDebrid == "" {
		appLogger.Warn("[App] no debrid API key configured, acquisitions will be rejected")
	} else {
		appConfig.APIKeyDebrid = validator.SanitizeAPIKey(appConfig.APIKeyDebrid)
		if !validator.IsValidDebridKey(appConfig.APIKeyDebrid) {
			appLogger.Warnf("[App] debrid API key %s has an unexpected format", validator.MaskAPIKey(appConfig.APIKeyDebrid))
		} else {
			appLogger.Infof("[App] using debrid API key %s", validator.MaskAPIKey(appConfig.APIKeyDebrid))
		}
	}
	if appConfig.RelayURL != "" {
		appLogger.Infof("[App] routing outbound traffic through relay at %s", appConfig.RelayURL)
	}
}

func initializeDatabase() {
	db, err := database.New(appConfig.DatabasePath)
	if err != nil {
		appLogger.Fatalf("[App] failed to initialize database: %v", err)
	}
	appDB = db
	appLogger.Infof("[App] database initialized at %s", appConfig.DatabasePath)
}

func initializeServices(ctx context.Context) {
	serviceContainer = services.NewContainer(appConfig, appDB, appLogger)
	handler = handlers.New(serviceContainer)

	serviceContainer.Cache.StartCleanup(ctx, appConfig.CacheTTL)
	serviceContainer.Cleanup.Start(ctx)
}
