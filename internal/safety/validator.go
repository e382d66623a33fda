package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrFilesystemRoot = errors.New("refusing to remove filesystem root")
	ErrProtectedPath  = errors.New("target contains a protected path")
)

// Validator guards recursive deletes against wiping the tree the tool runs in
type Validator struct {
	ProtectedPaths []string
}

// NewValidator protects workDir and any extra paths. A target is refused when
// it is a protected path or one of its ancestors.
func NewValidator(workDir string, extraProtected []string) *Validator {
	return &Validator{
		ProtectedPaths: normalizeRoots(append([]string{workDir}, extraProtected...)),
	}
}

// ValidateDeleteTarget is the single-source-of-truth for delete authorization
// Returns typed error on safety violation
func (v *Validator) ValidateDeleteTarget(path string) error {
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}

	if IsFilesystemRoot(p) {
		return ErrFilesystemRoot
	}

	for _, prot := range v.ProtectedPaths {
		if hasPathPrefix(prot, p) {
			return ErrProtectedPath
		}
	}

	return nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// IsFilesystemRoot reports whether p is "/" or a volume root such as `C:\`
func IsFilesystemRoot(p string) bool {
	p = filepath.Clean(p)
	return p == filepath.VolumeName(p)+string(os.PathSeparator)
}

// hasPathPrefix checks if path equals prefix or lies beneath it
func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if path == prefix {
		return true
	}
	if IsFilesystemRoot(prefix) {
		return strings.HasPrefix(path, prefix)
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

// normalizeRoots converts slice of roots to absolute, cleaned paths
func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		out = append(out, filepath.Clean(abs))
	}
	return out
}
