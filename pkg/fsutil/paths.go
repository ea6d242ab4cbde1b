package fsutil

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application used in paths
	AppName = "apodex"
)

// GetConfigDir returns the platform-specific config directory for the application
// On Linux: $XDG_CONFIG_HOME/apodex or ~/.config/apodex
// On macOS: ~/Library/Application Support/apodex
// On Windows: %AppData%\apodex
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
