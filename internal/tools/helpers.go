package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolvePath resolves file relative to root, rejecting paths that escape
// it, grounded on the teacher's mcptools.validatePathWithRoot.
func resolvePath(root, file string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid root path: %w", err)
	}
	var absPath string
	if filepath.IsAbs(file) {
		absPath = file
	} else {
		absPath = filepath.Join(rootAbs, file)
	}
	absPath, err = filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}
	relPath, err := filepath.Rel(rootAbs, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("access denied: path outside working directory")
	}
	return absPath, nil
}

func errf(format string, args ...any) (string, bool, error) {
	return fmt.Sprintf(format, args...), true, nil
}

func ok(text string) (string, bool, error) {
	return text, false, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
