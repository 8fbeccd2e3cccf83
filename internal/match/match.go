// Package match decides whether glob patterns cover file paths.
//
// Patterns use filesystem glob syntax: `*` matches within one path segment,
// `**` matches across segments, `?` matches a single character, and bracket
// expressions match character classes. Matching is case-sensitive and
// anchored: the whole path must match. Both patterns and paths are
// normalized to forward slashes before matching, so registry documents stay
// portable across operating systems.
package match

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is a pre-validated glob pattern. A pattern that fails to compile
// matches nothing; the caller inspects Valid to surface it as a validation
// issue rather than a matcher failure.
type Pattern struct {
	raw     string
	cleaned string
	valid   bool
}

// Compile normalizes and validates a glob pattern. Compile never fails:
// malformed input yields a Pattern with Valid() == false. Backslashes in
// patterns are escape characters and are left alone; only paths get
// separator conversion.
func Compile(raw string) Pattern {
	cleaned := strings.TrimPrefix(raw, "./")
	if len(cleaned) > 1 {
		cleaned = strings.TrimSuffix(cleaned, "/")
	}
	return Pattern{
		raw:     raw,
		cleaned: cleaned,
		valid:   doublestar.ValidatePattern(cleaned),
	}
}

// Raw returns the pattern text as written in the registry.
func (p Pattern) Raw() string {
	return p.raw
}

// Valid reports whether the pattern compiled.
func (p Pattern) Valid() bool {
	return p.valid
}

// Match reports whether the pattern covers path. Invalid patterns match
// nothing.
func (p Pattern) Match(path string) bool {
	if !p.valid {
		return false
	}
	ok, err := doublestar.Match(p.cleaned, Normalize(path))
	if err != nil {
		// ValidatePattern accepted the pattern, so Match cannot
		// reject it; kept for the error contract of doublestar.
		return false
	}
	return ok
}

// CompileAll compiles a pattern list in order.
func CompileAll(raw []string) []Pattern {
	patterns := make([]Pattern, len(raw))
	for i, r := range raw {
		patterns[i] = Compile(r)
	}
	return patterns
}

// Matches is the one-shot form of Compile + Match for callers that do not
// reuse patterns.
func Matches(pattern, path string) bool {
	return Compile(pattern).Match(path)
}

// Normalize converts a path to the canonical forward-slash separator and
// strips leading "./" and trailing separators. Backslashes are treated as
// separators regardless of host OS so registries written on Windows query
// cleanly everywhere.
func Normalize(path string) string {
	s := strings.ReplaceAll(path, `\`, "/")
	s = strings.TrimPrefix(s, "./")
	if len(s) > 1 {
		s = strings.TrimSuffix(s, "/")
	}
	return s
}
