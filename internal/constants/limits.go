package constants

// Limits and counts for various operations
const (
	// Search result cache
	DefaultCacheSize       = 128
	DefaultCacheTTLMinutes = 10

	// Hashes per availability-check request, a remote size limit
	AvailabilityBatchSize = 100

	// Maximum results returned to the caller after filter and sort
	DefaultMaxResults = 300

	// Debrid API rate limiting (requests/second and burst)
	DebridRateLimit = 4
	DebridRateBurst = 8

	// Provider API rate limiting
	ProviderRateLimit = 2
	ProviderRateBurst = 4

	// Conversion factors
	BytesToGB = 1024 * 1024 * 1024
)
