// Package fsutil provides the file system helpers used when saving artifacts.
package fsutil

// File and directory permission constants.
const (
	FileModeDefault = 0o644 // -rw-r--r--: Saved artifacts and config files
	FileModeSecure  = 0o600 // -rw-------: Files that may hold tokens

	DirModeDefault = 0o755 // drwxr-xr-x: Output and config directories
)
