package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Target represents one upstream repository configured for backup
type Target struct {
	Owner           string
	Repo            string
	AllowPrerelease bool
}

// Slug returns the "owner/repo" form of the target
func (t Target) Slug() string {
	return t.Owner + "/" + t.Repo
}

// prereleaseKeys lists the accepted key names for the prerelease-inclusion
// flag. The first key present in the entry wins.
var prereleaseKeys = []string{
	"allow_prerelease",
	"allow_prereleases",
	"include_prerelease",
	"include_prereleases",
	"prerelease",
}

// ParseTarget normalizes a raw configuration entry into a Target. Accepted
// shapes:
//   - {"repo": "owner/name"} combined form
//   - {"repo": "name", "owner": "..."} or {"repo": "name", "user": "..."}
//   - {"owner": "...", "repo": "..."} separate fields
//
// Entries that do not resolve to a non-empty (owner, repo) pair return an
// error; callers are expected to log and skip them.
func ParseTarget(entry map[string]any) (Target, error) {
	var target Target

	for _, key := range prereleaseKeys {
		v, ok := entry[key]
		if !ok {
			continue
		}
		target.AllowPrerelease = truthy(v)
		break
	}

	repoRaw, _ := entry["repo"].(string)
	repoRaw = strings.TrimSpace(repoRaw)
	if repoRaw == "" {
		return Target{}, goerr.New("target entry has no repo field", goerr.V("entry", entry))
	}

	if owner, name, ok := strings.Cut(repoRaw, "/"); ok {
		target.Owner = strings.TrimSpace(owner)
		target.Repo = strings.TrimSpace(name)
	} else {
		target.Repo = repoRaw
		for _, key := range []string{"owner", "user"} {
			if v, ok := entry[key].(string); ok && strings.TrimSpace(v) != "" {
				target.Owner = strings.TrimSpace(v)
				break
			}
		}
	}

	if target.Owner == "" || target.Repo == "" {
		return Target{}, goerr.New("target entry needs 'repo': 'owner/repo' or 'owner' + 'repo'",
			goerr.V("entry", entry))
	}

	return target, nil
}

// truthy interprets the flexible boolean values found in target files
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "1":
			return true
		}
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	}
	return false
}
