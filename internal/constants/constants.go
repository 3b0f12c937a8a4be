package constants

const (
	// Application metadata
	AppName    = "magnetarr"
	AppVersion = "1.0.0"

	// Default configuration values
	DefaultPort     = "5000"
	DefaultLogLevel = "info"
)

// VideoExtensions lists the file extensions considered playable media.
var VideoExtensions = []string{
	".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv",
	".webm", ".m4v", ".mpg", ".mpeg", ".ts", ".m2ts",
}
