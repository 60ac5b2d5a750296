package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultHome returns $HOME/.securejoin.
func DefaultHome() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return ".securejoin"
	}
	return filepath.Join(h, ".securejoin")
}

// EnsureHome creates the data directory with owner-only permissions.
func EnsureHome(home string) error {
	if err := os.MkdirAll(home, 0o700); err != nil {
		return fmt.Errorf("create home %s: %w", home, err)
	}
	return nil
}
