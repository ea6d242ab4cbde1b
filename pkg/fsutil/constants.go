package fsutil

// File and directory permission constants.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--: Default for regular files and exported images
	FileModeSecure  = 0o600 // -rw-------: For files holding credentials (the config file)

	// Directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x: Default for directories
	DirModeSecure  = 0o700 // drwx------: For directories holding credentials
)
