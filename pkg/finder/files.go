package finder

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ritzau/code-intel/pkg/logging"
)

// SupportedExtensions is the set of source file extensions the engine
// analyzes. Everything else is skipped during discovery.
var SupportedExtensions = map[string]bool{
	".ts":   true,
	".tsx":  true,
	".js":   true,
	".jsx":  true,
	".py":   true,
	".go":   true,
	".rs":   true,
	".java": true,
}

// DefaultIgnoreDirs lists directory names that never contain analyzable
// first-party source
var DefaultIgnoreDirs = []string{
	"node_modules",
	".git",
	"dist",
	"build",
	"vendor",
	"target",
	"__pycache__",
	".next",
	"coverage",
}

// Options controls a discovery walk
type Options struct {
	IgnoreDirs []string // Directory names to prune; nil means DefaultIgnoreDirs
	Include    []string // Path substrings; when set, a file must match one
	Exclude    []string // Path substrings; a matching file is dropped
	Extensions []string // Extension allow-list; nil means SupportedExtensions
}

// FindSourceFiles walks root and returns all supported source files in
// sorted order. Unreadable directories are logged and skipped rather than
// failing the walk; the caller still gets everything that was reachable.
func FindSourceFiles(root string, opts Options) ([]string, error) {
	ignore := make(map[string]bool)
	dirs := opts.IgnoreDirs
	if dirs == nil {
		dirs = DefaultIgnoreDirs
	}
	for _, d := range dirs {
		ignore[d] = true
	}

	allowed := SupportedExtensions
	if opts.Extensions != nil {
		allowed = make(map[string]bool, len(opts.Extensions))
		for _, ext := range opts.Extensions {
			allowed[ext] = true
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission problems on a subtree should not kill discovery
			logging.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if ignore[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !allowed[filepath.Ext(path)] {
			return nil
		}
		if !matchesFilters(path, opts.Include, opts.Exclude) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// matchesFilters applies include/exclude substring filters to a path
func matchesFilters(path string, include, exclude []string) bool {
	if len(include) > 0 {
		matched := false
		for _, pattern := range include {
			if strings.Contains(path, pattern) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pattern := range exclude {
		if strings.Contains(path, pattern) {
			return false
		}
	}
	return true
}
