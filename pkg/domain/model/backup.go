package model

import (
	"regexp"
	"strings"
)

const (
	// maxTagComponentLen bounds each sanitized tag component
	maxTagComponentLen = 80
	// maxTagLen bounds the whole composed backup tag
	maxTagLen = 100

	// tagPlaceholder substitutes components that sanitize to nothing
	tagPlaceholder = "unknown"
)

var (
	invalidTagChars = regexp.MustCompile(`[^\w.-]+`)
	separatorRuns   = regexp.MustCompile(`[-_.]{2,}`)
)

// NormalizeVersion strips a single leading "v"/"V" from a release tag and
// trims whitespace. An empty tag maps to a placeholder. The function is
// idempotent: normalizing an already-normalized version returns it unchanged.
func NormalizeVersion(rawTag string) string {
	v := strings.TrimSpace(rawTag)
	if v == "" {
		return tagPlaceholder
	}
	// Strip the prefix only when it looks like "v1.2.3"; a bare word that
	// happens to start with "v" is left alone, which also keeps the
	// function idempotent.
	if len(v) > 1 && (v[0] == 'v' || v[0] == 'V') && v[1] >= '0' && v[1] <= '9' {
		v = v[1:]
	}
	return v
}

// SanitizeTagComponent maps an arbitrary string onto the restricted tag
// character set (word characters, dot, hyphen). Runs of invalid characters
// become a single hyphen, separator runs are collapsed, leading/trailing
// separators are trimmed, and the result is capped at maxTagComponentLen.
// A component that sanitizes to nothing becomes a placeholder.
func SanitizeTagComponent(s string) string {
	s = invalidTagChars.ReplaceAllString(s, "-")
	s = separatorRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_.")
	if len(s) > maxTagComponentLen {
		s = strings.Trim(s[:maxTagComponentLen], "-_.")
	}
	if s == "" {
		return tagPlaceholder
	}
	return s
}

// NewBackupTag derives the deterministic backup tag for a release of
// owner/repo. The version should already be normalized. The composed form is
// "{owner}_{repo}-v{version}", optionally suffixed "-by-{author}", capped at
// maxTagLen. The same inputs always yield the same tag; the tag doubles as
// the idempotency key against the backup repository.
func NewBackupTag(owner, repo, version, author string) string {
	tag := SanitizeTagComponent(owner) + "_" + SanitizeTagComponent(repo) +
		"-v" + SanitizeTagComponent(version)
	if author != "" {
		tag += "-by-" + SanitizeTagComponent(author)
	}
	if len(tag) > maxTagLen {
		tag = strings.Trim(tag[:maxTagLen], "-_.")
	}
	return tag
}
