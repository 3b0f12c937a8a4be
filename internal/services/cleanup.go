package services

import (
	"context"
	"time"

	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/internal/database"
	"github.com/magnetarr/magnetarr/pkg/logger"
)

// cleanupClient is the slice of the debrid client the cleanup pass needs.
type cleanupClient interface {
	DeleteMagnet(ctx context.Context, apiKey, remoteID string) error
}

// CleanupService periodically deletes magnets from the acquisition service
// once they age past the retention window, then forgets their records.
type CleanupService struct {
	client    cleanupClient
	db        database.Database
	apiKey    string
	retention time.Duration
	logger    logger.Logger
}

func NewCleanupService(client cleanupClient, db database.Database, apiKey string, log logger.Logger) *CleanupService {
	return &CleanupService{
		client:    client,
		db:        db,
		apiKey:    apiKey,
		retention: constants.MagnetRetention,
		logger:    log,
	}
}

// Start runs the cleanup loop until ctx is done.
func (s *CleanupService) Start(ctx context.Context) {
	if s.apiKey == "" {
		s.logger.Debug("[CleanupService] no API key configured, cleanup disabled")
		return
	}

	ticker := time.NewTicker(constants.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

func (s *CleanupService) runOnce(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)
	expired, err := s.db.ListMagnetsOlderThan(cutoff)
	if err != nil {
		s.logger.Errorf("[CleanupService] failed to list expired magnets: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	s.logger.Infof("[CleanupService] removing %d expired magnets", len(expired))
	for _, record := range expired {
		if err := s.client.DeleteMagnet(ctx, s.apiKey, record.RemoteID); err != nil {
			s.logger.Warnf("[CleanupService] failed to delete magnet %s: %v", record.RemoteID, err)
			continue
		}
		if err := s.db.DeleteMagnet(record.RemoteID); err != nil {
			s.logger.Warnf("[CleanupService] failed to drop magnet record %s: %v", record.RemoteID, err)
		}
		if err := s.db.DeleteRemoteID(record.Hash); err != nil {
			s.logger.Warnf("[CleanupService] failed to forget remote ID for %s: %v", record.Hash, err)
		}
	}
}
