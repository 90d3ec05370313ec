package model

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// LineNumber returns the 1-based line containing byte offset off.
func LineNumber(content string, off int) int {
	if off > len(content) {
		off = len(content)
	}
	if off < 0 {
		off = 0
	}
	return strings.Count(content[:off], "\n") + 1
}
