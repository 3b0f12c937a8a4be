// Package constants defines timeout values, limits and provider names used
// throughout the application.
package constants

import "time"

// Timeout constants for various operations
const (
	// Per-provider search request timeout
	ProviderTimeout = 15 * time.Second

	// Timeout for a single availability-check chunk
	AvailabilityTimeout = 30 * time.Second

	// Timeout for acquisition-service API calls
	DebridAPITimeout = 60 * time.Second

	// Delay between status polls while an acquisition is in flight
	PollInterval = 10 * time.Second

	// Retention window for stored magnets before cleanup removes them
	MagnetRetention = 24 * time.Hour

	// Interval between cleanup passes
	CleanupInterval = 1 * time.Hour
)

// Attempt bounds
const (
	// Maximum status polls for a freshly submitted magnet (~1h at 10s)
	MaxPollAttempts = 360

	// Maximum status polls when reusing a remembered remote identifier;
	// a remembered identifier should already be indexed, so give up fast
	MaxResumePollAttempts = 12

	// Transient-failure retries for the add-reference call
	MaxUploadAttempts = 3
)
