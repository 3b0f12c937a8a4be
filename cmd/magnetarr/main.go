package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/magnetarr/magnetarr/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	initializeLogger()
	initializeConfig()
	initializeDatabase()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initializeServices(ctx)

	if !appConfig.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(appLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.Gzip())

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:    ":" + appConfig.Port,
		Handler: router,
	}

	go func() {
		appLogger.Infof("[App] starting HTTP server on port %s", appConfig.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("[App] HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("[App] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("[App] forced shutdown: %v", err)
	}
	if err := appDB.Close(); err != nil {
		appLogger.Errorf("[App] failed to close database: %v", err)
	}
}
