package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/relvault/pkg/domain/model"
)

// GitHubClient defines the release-hosting API operations the pipeline needs
type GitHubClient interface {
	// LatestStableRelease fetches the latest non-prerelease, non-draft
	// release of owner/repo. Returns (nil, nil) when the repository has no
	// such release.
	LatestStableRelease(ctx context.Context, owner, repo string) (*model.Release, error)

	// ListReleases lists releases of owner/repo, most recent first, as
	// returned by the host. Drafts and prereleases are included.
	ListReleases(ctx context.Context, owner, repo string) ([]*model.Release, error)

	// ReleaseByTag fetches a release of owner/repo by its exact tag.
	// Returns (nil, nil) when no release carries the tag.
	ReleaseByTag(ctx context.Context, owner, repo, tag string) (*model.Release, error)

	// DownloadAsset opens a stream for the asset's binary content. The
	// caller must close the returned reader.
	DownloadAsset(ctx context.Context, owner, repo string, asset model.Asset) (io.ReadCloser, error)

	// CreateRelease creates a non-draft, non-prerelease release in
	// owner/repo and returns its ID for the subsequent asset upload.
	CreateRelease(ctx context.Context, owner, repo string, release *model.BackupRelease) (int64, error)

	// UploadReleaseArchive uploads the file at archivePath as a release
	// asset with a 7z content type.
	UploadReleaseArchive(ctx context.Context, owner, repo string, releaseID int64, archivePath string) error
}
