// Package security validates file paths that come from configuration.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath     = errors.New("file path cannot be empty")
	ErrForbiddenChar = errors.New("file path contains a forbidden character")
)

// forbiddenChars are shell metacharacters never expected in a config path.
const forbiddenChars = ";&|$`<>!(){}\n\r"

// CleanPath returns path cleaned, made absolute and, when the file exists,
// with symlinks resolved.
func CleanPath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("%w %q: %s", ErrForbiddenChar, path[i], path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return abs, nil
		}
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolved, nil
}

// ReadFile reads path after CleanPath accepts it.
func ReadFile(path string) ([]byte, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.ReadFile(clean)
}
