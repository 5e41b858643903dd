package storage

import (
	"path"
	"path/filepath"
	"strings"
)

// shouldExclude reports whether relativePath matches any exclude pattern.
// Supported forms:
//   - "*.tmp"          basename glob
//   - "cache/"         a directory (and everything below it) at any depth
//   - "build/*.o"      glob over the whole relative path
//   - "**/thumbs.db"   basename or path suffix at any depth
func shouldExclude(relativePath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	rel := filepath.ToSlash(relativePath)
	segments := strings.Split(rel, "/")
	base := segments[len(segments)-1]

	for _, raw := range patterns {
		pattern := filepath.ToSlash(strings.TrimSpace(raw))
		if pattern == "" {
			continue
		}

		switch {
		case strings.HasSuffix(pattern, "/"):
			dir := strings.TrimSuffix(pattern, "/")
			for _, seg := range segments {
				if globMatch(dir, seg) {
					return true
				}
			}

		case strings.HasPrefix(pattern, "**/"):
			suffix := strings.TrimPrefix(pattern, "**/")
			if globMatch(suffix, base) || rel == suffix || strings.HasSuffix(rel, "/"+suffix) {
				return true
			}
			for _, seg := range segments {
				if globMatch(suffix, seg) {
					return true
				}
			}

		case strings.Contains(pattern, "/"):
			if globMatch(pattern, rel) {
				return true
			}

		default:
			if globMatch(pattern, base) {
				return true
			}
		}
	}

	return false
}

// globMatch treats malformed patterns as non-matching
func globMatch(pattern, name string) bool {
	matched, err := path.Match(pattern, name)
	return err == nil && matched
}
