package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

var errOutsideRoot = fmt.Errorf("path is outside of trusted root")

// VerifyPath verifies that path, joined onto basePath, names an entry
// strictly below basePath.
func VerifyPath(path, basePath string) error {
	root := filepath.Clean(basePath)
	rel, err := filepath.Rel(root, filepath.Join(root, path))
	if err != nil {
		return errOutsideRoot
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errOutsideRoot
	}
	return nil
}

// SafeJoin joins name onto basePath and refuses names that escape it.
func SafeJoin(basePath, name string) (string, error) {
	if err := VerifyPath(name, basePath); err != nil {
		return "", fmt.Errorf("%q: %w", name, err)
	}
	return filepath.Join(basePath, name), nil
}
