package cli

// Default values for CLI flags and formatted output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// bannerTitle heads the configuration banner printed by export.
	bannerTitle = "NASA APOD Exporter"
)
