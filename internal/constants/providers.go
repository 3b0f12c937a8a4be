package constants

// Provider name constants for consistent usage across internal packages
const (
	ProviderApiBay      = "apibay"
	ProviderTorrentsCSV = "torrentscsv"
	ProviderEZTV        = "eztv"
	ProviderYGG         = "ygg"
)

// DefaultProviderOrder is the failover order used when the configuration
// does not override it.
var DefaultProviderOrder = []string{
	ProviderApiBay,
	ProviderTorrentsCSV,
	ProviderEZTV,
	ProviderYGG,
}
