package ingestion

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every localization file below a directory.
const DefaultPattern = "**/*.{xlf,xliff,xml}"

// IsFixedOutput reports whether name is a file produced by WriteOutput.
func IsFixedOutput(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), "_fixed")
}

// ExpandPaths resolves glob arguments such as "locales/**/*.xlf" into file paths.
// Plain paths pass through untouched. Glob matches are sorted, limited to allowed
// extensions and exclude earlier repair outputs. Duplicates are dropped.
func ExpandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool, len(args))
	paths := make([]string, 0, len(args))
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		sort.Strings(matches)

		found := 0
		for _, match := range matches {
			if CheckFilename(match) != nil || IsFixedOutput(match) {
				continue
			}
			add(match)
			found++
		}
		if found == 0 {
			return nil, fmt.Errorf("pattern %q matched no XLIFF/XML files", arg)
		}
	}
	return paths, nil
}

// MatchPattern reports whether the slash-separated relative path rel matches pattern.
// An empty pattern means DefaultPattern.
func MatchPattern(pattern, rel string) bool {
	if pattern == "" {
		pattern = DefaultPattern
	}
	ok, err := doublestar.Match(pattern, filepath.ToSlash(rel))
	return err == nil && ok
}
