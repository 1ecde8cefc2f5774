package environment

import (
	"os"
	"path/filepath"
	"strings"
)

// GetEnvPath joins elem to the directory found in key, or to fallback when key is not set.
// A leading `~` is expanded to the home directory.
func GetEnvPath(key, fallback string, elem ...string) string {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}

	if v == "~" || strings.HasPrefix(v, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			v = filepath.Join(home, strings.TrimPrefix(v, "~"))
		}
	}

	return filepath.Join(append([]string{v}, elem...)...)
}
