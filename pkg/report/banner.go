package report

import (
	"fmt"
	"io"
	"strings"
)

const rule = "==================================================================="

// BannerInfo is the run configuration shown before a batch starts.
type BannerInfo struct {
	Title                  string
	APIKey                 string
	MaxConcurrentDownloads int
	MaxConcurrentExports   int
	Dates                  []string
}

// Banner writes the configuration header. The API key is masked.
func Banner(w io.Writer, info BannerInfo) {
	title := info.Title
	if title == "" {
		title = "NASA APOD Exporter"
	}
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintln(w, title)
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintln(w, "Configuration:")
	_, _ = fmt.Fprintf(w, "  API Key: %s\n", maskKey(info.APIKey))
	_, _ = fmt.Fprintf(w, "  Max Concurrent Downloads: %d\n", info.MaxConcurrentDownloads)
	_, _ = fmt.Fprintf(w, "  Max Concurrent Exports: %d\n", info.MaxConcurrentExports)
	_, _ = fmt.Fprintf(w, "  Dates to process: %s\n", strings.Join(info.Dates, ", "))
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintln(w)
}

// visibleKeyLen is how much of the API key the banner shows.
const visibleKeyLen = 10

func maskKey(key string) string {
	if len(key) > visibleKeyLen {
		key = key[:visibleKeyLen]
	}
	return key + "..."
}
