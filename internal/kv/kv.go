package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrCorrupt is wrapped by Get when a key is present but its stored entry
// cannot be decoded. The key can still be removed.
var ErrCorrupt = errors.New("corrupt entry")

// Store is a string key/value substrate.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// DefaultDir returns the platform-appropriate data directory for snapreview.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "snapreview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "snapreview", "data"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "snapreview", "data"), nil
		}
		return filepath.Join(home, "AppData", "Local", "snapreview", "data"), nil
	default:
		return filepath.Join(home, ".local", "share", "snapreview"), nil
	}
}
