package model

import "time"

// Release represents an upstream release as returned by the hosting API.
// Read-only from this system's perspective.
type Release struct {
	TagName     string
	Name        string
	Body        string
	Author      string
	HTMLURL     string
	Draft       bool
	Prerelease  bool
	PublishedAt time.Time
	Assets      []Asset
}

// Asset represents one binary asset attached to an upstream release
type Asset struct {
	ID          int64
	Name        string
	DownloadURL string
	Size        int64
}

// BackupRelease is the release created in the backup repository. It carries
// the derived tag and a generated body documenting the original release.
type BackupRelease struct {
	Tag  string
	Name string
	Body string
}
