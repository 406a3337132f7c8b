package artifact_source

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/turbot/songplay-etl/types"
)

// Pattern is a glob pattern, relative to a source root, selecting the artifacts to read.
// A '*' matches any run of characters within a single path segment, '**' matches any number of segments.
// Matching is case-sensitive
type Pattern struct {
	glob       string
	prefix     string
	Extensions types.ExtensionLookup
}

func NewPattern(glob string, extensions []string) (*Pattern, error) {
	glob = strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(glob)), "/")
	if glob == "" {
		return nil, fmt.Errorf("pattern must not be empty")
	}
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("invalid pattern '%s'", glob)
	}

	base, _ := doublestar.SplitPattern(glob)
	if base == "." {
		base = ""
	}
	return &Pattern{
		glob:       glob,
		prefix:     base,
		Extensions: types.NewExtensionLookup(extensions),
	}, nil
}

// Prefix returns the static directory prefix of the pattern, which need not be listed beyond
func (p *Pattern) Prefix() string {
	return p.prefix
}

// Match returns whether the slash-separated relative path matches the pattern and the extension filter.
// Paths with '.' or '..' segments never match
func (p *Pattern) Match(relPath string) bool {
	if !isCleanRelative(relPath) || !p.Extensions.IsValid(relPath) {
		return false
	}
	match, err := doublestar.Match(p.glob, relPath)
	return err == nil && match
}

func (p *Pattern) String() string {
	return p.glob
}

func isCleanRelative(relPath string) bool {
	for _, segment := range strings.Split(relPath, "/") {
		if segment == "." || segment == ".." {
			return false
		}
	}
	return true
}
