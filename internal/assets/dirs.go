// Package assets resolves the model directory and provisions model bundles:
// presence checks against a bundle manifest, HTTP download with atomic
// rename, checksum verification, and a disk-space preflight. Every failure
// is an actionable startup error naming the directory and the files
// involved.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// modelDirEnv overrides the model directory when no flag is given.
const modelDirEnv = "KOTOBA_MODEL_DIR"

// ModelDir resolves the model directory. Resolution order: explicit flag
// value, then the environment override, then the platform user-data
// location.
func ModelDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(modelDirEnv); v != "" {
		return v, nil
	}
	return defaultModelDir()
}

func defaultModelDir() (string, error) {
	if runtime.GOOS == "linux" {
		if v := os.Getenv("XDG_DATA_HOME"); v != "" {
			return filepath.Join(v, "kotoba", "models"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("assets: resolve home directory: %w", err)
		}
		return filepath.Join(home, ".local", "share", "kotoba", "models"), nil
	}

	// Darwin and Windows keep app data under the user config root.
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("assets: resolve user data directory: %w", err)
	}
	return filepath.Join(base, "Kotoba", "models"), nil
}
