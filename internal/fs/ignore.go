package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFilename names the per-directory file listing patterns to skip
// during folder imports and inbox scans.
const IgnoreFilename = ".gbadbignore"

// DefaultIgnorePatterns skip emulator side files and OS litter that often
// sit next to ROMs and skins.
var DefaultIgnorePatterns = []string{
	IgnoreFilename,
	".DS_Store",
	"._*",
	"*.sav",
	"*.srm",
	"*.part",
	"*.crdownload",
}

type ignorePattern struct {
	pattern   string
	matchPath bool // match the relative path instead of the basename
}

// IgnoreMatcher checks file paths against a set of glob patterns.
// Patterns without '/' match the basename; patterns with '/' match the
// slash-separated path relative to the scanned directory.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		patterns = append(patterns, ignorePattern{
			pattern:   raw,
			matchPath: strings.Contains(raw, "/"),
		})
	}
	return &IgnoreMatcher{patterns: patterns}
}

// LoadIgnoreMatcher builds a matcher from the defaults plus the
// directory's own ignore file, if any.
func LoadIgnoreMatcher(dir string) (*IgnoreMatcher, error) {
	extra, err := ParseIgnoreFile(filepath.Join(dir, IgnoreFilename))
	if err != nil {
		return nil, err
	}
	return NewIgnoreMatcher(append(append([]string{}, DefaultIgnorePatterns...), extra...)), nil
}

// Match reports whether the given relative path should be ignored.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	normalized := filepath.ToSlash(relativePath)
	basename := filepath.Base(relativePath)

	for _, p := range m.patterns {
		target := basename
		if p.matchPath {
			target = normalized
		}
		matched, err := filepath.Match(p.pattern, target)
		if err != nil {
			// Malformed pattern never matches.
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
