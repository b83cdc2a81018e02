package version

// Build information, set with -ldflags "-X github.com/arthur-debert/modlink/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
