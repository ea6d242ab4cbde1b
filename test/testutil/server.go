// Package testutil provides a fake APOD service and config helpers for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// MetadataPath is where the fake server answers APOD metadata queries.
const MetadataPath = "/planetary/apod"

// APODServer is an httptest server speaking the subset of the APOD API that apodex uses.
// Dates without a registered image answer 404.
type APODServer struct {
	*httptest.Server

	mu               sync.Mutex
	images           map[string][]byte
	metadataRequests map[string]int
	apiKeys          []string
}

// NewAPODServer starts a fake APOD server that is closed when the test ends.
func NewAPODServer(t *testing.T) *APODServer {
	t.Helper()
	s := &APODServer{
		images:           make(map[string][]byte),
		metadataRequests: make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(MetadataPath, s.handleMetadata)
	mux.HandleFunc("/image/", s.handleImage)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// AddImage registers the payload served for date.
func (s *APODServer) AddImage(date string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[date] = data
}

// Endpoint returns the metadata URL to configure as the API endpoint.
func (s *APODServer) Endpoint() string {
	return s.URL + MetadataPath
}

// MetadataRequests returns how often metadata for date was requested.
func (s *APODServer) MetadataRequests(date string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadataRequests[date]
}

// APIKeys returns the api_key values received, in arrival order.
func (s *APODServer) APIKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.apiKeys...)
}

func (s *APODServer) handleMetadata(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	s.mu.Lock()
	s.metadataRequests[date]++
	s.apiKeys = append(s.apiKeys, r.URL.Query().Get("api_key"))
	_, ok := s.images[date]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": http.StatusNotFound,
			"msg":  fmt.Sprintf("No data available for date: %s", date),
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"date":       date,
		"title":      "Picture for " + date,
		"media_type": "image",
		"url":        s.URL + "/image/" + date + ".jpg",
	})
}

func (s *APODServer) handleImage(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/image/"), ".jpg")

	s.mu.Lock()
	data, ok := s.images[date]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(data)
}

// SetupTestConfig writes a config file pointing at endpoint and outputDir and returns its path.
func SetupTestConfig(t *testing.T, endpoint, outputDir string) string {
	t.Helper()

	content := fmt.Sprintf(`version: "1.0"
settings:
  api_key: TEST_KEY_0123456789
  api_endpoint: %s
  output_dir: %s
  http_timeout: 5s
  max_concurrent_downloads: 2
  max_concurrent_exports: 2
  log_level: error
  log_format: text
`, endpoint, outputDir)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}
