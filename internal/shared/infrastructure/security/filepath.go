// Package security validates user-supplied file paths before kafeel reads,
// writes or executes them.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned for paths that fail validation.
var ErrInvalidPath = errors.New("invalid path")

// forbiddenChars are shell metacharacters never expected in a config path.
var forbiddenChars = []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r"}

// ValidateFilePath cleans path, makes it absolute and resolves symlinks when
// the file exists. Paths containing shell metacharacters are rejected.
func ValidateFilePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	for _, c := range forbiddenChars {
		if strings.Contains(path, c) {
			return "", fmt.Errorf("%w: forbidden character %q in %s", ErrInvalidPath, c, path)
		}
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("resolve %s: %w", abs, err)
	}
	return resolved, nil
}

// ValidateExecutable validates path and requires an existing regular file
// with an execute bit set.
func ValidateExecutable(path string) (string, error) {
	clean, err := ValidateFilePath(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(clean)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrInvalidPath, clean)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%w: %s is not executable", ErrInvalidPath, clean)
	}
	return clean, nil
}

// ReadFile reads a file after validating its path.
func ReadFile(path string) ([]byte, error) {
	clean, err := ValidateFilePath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path is validated above
	return os.ReadFile(clean)
}

// CreateFile creates or truncates a file readable only by the owner after
// validating its path.
func CreateFile(path string) (*os.File, error) {
	clean, err := ValidateFilePath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path is validated above
	return os.OpenFile(clean, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
}
