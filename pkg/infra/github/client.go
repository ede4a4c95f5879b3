package github

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relvault/pkg/domain/interfaces"
	"github.com/m-mizutani/relvault/pkg/domain/model"
)

// archiveMediaType is the content type of uploaded backup archives
const archiveMediaType = "application/x-7z-compressed"

type client struct {
	githubClient *github.Client
	httpClient   *http.Client
}

// Option configures the client
type Option func(*client)

// WithBaseURL overrides the API base URL, mainly for tests against a local
// HTTP server. The URL must end with a trailing slash.
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		if u, err := url.Parse(baseURL); err == nil {
			c.githubClient.BaseURL = u
			c.githubClient.UploadURL = u
		}
	}
}

// WithHTTPClient overrides the HTTP client used for asset downloads
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a GitHub client authenticated with a personal access or
// installation token.
func NewClient(token string, opts ...Option) interfaces.GitHubClient {
	c := &client{
		githubClient: github.NewClient(nil).WithAuthToken(token),
		httpClient:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestStableRelease fetches the latest non-prerelease release. A 404 from
// the API means the repository has no stable release and maps to (nil, nil).
func (c *client) LatestStableRelease(ctx context.Context, owner, repo string) (*model.Release, error) {
	rel, resp, err := c.githubClient.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get latest release",
			goerr.V("owner", owner), goerr.V("repo", repo))
	}
	return convertRelease(rel), nil
}

// ListReleases lists releases most recent first, as returned by the host
func (c *client) ListReleases(ctx context.Context, owner, repo string) ([]*model.Release, error) {
	rels, _, err := c.githubClient.Repositories.ListReleases(ctx, owner, repo, &github.ListOptions{
		PerPage: 100,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list releases",
			goerr.V("owner", owner), goerr.V("repo", repo))
	}

	releases := make([]*model.Release, 0, len(rels))
	for _, rel := range rels {
		releases = append(releases, convertRelease(rel))
	}
	return releases, nil
}

// ReleaseByTag fetches a release by its exact tag; 404 maps to (nil, nil)
func (c *client) ReleaseByTag(ctx context.Context, owner, repo, tag string) (*model.Release, error) {
	rel, resp, err := c.githubClient.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get release by tag",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("tag", tag))
	}
	return convertRelease(rel), nil
}

// DownloadAsset opens a stream for the asset content. The public download
// URL is preferred; when a release only exposes the API asset endpoint, the
// asset is fetched through it with an octet-stream accept header.
func (c *client) DownloadAsset(ctx context.Context, owner, repo string, asset model.Asset) (io.ReadCloser, error) {
	if asset.DownloadURL != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.DownloadURL, nil)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create asset download request",
				goerr.V("url", asset.DownloadURL))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to download asset",
				goerr.V("name", asset.Name), goerr.V("url", asset.DownloadURL))
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
			return nil, goerr.New("unexpected status for asset download",
				goerr.V("name", asset.Name),
				goerr.V("status", resp.StatusCode),
				goerr.V("body", string(body)))
		}
		return resp.Body, nil
	}

	rc, _, err := c.githubClient.Repositories.DownloadReleaseAsset(ctx, owner, repo, asset.ID, c.httpClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download asset via API",
			goerr.V("name", asset.Name), goerr.V("id", asset.ID))
	}
	return rc, nil
}

// CreateRelease creates a non-draft, non-prerelease release and returns its ID
func (c *client) CreateRelease(ctx context.Context, owner, repo string, release *model.BackupRelease) (int64, error) {
	created, _, err := c.githubClient.Repositories.CreateRelease(ctx, owner, repo, &github.RepositoryRelease{
		TagName:    github.Ptr(release.Tag),
		Name:       github.Ptr(release.Name),
		Body:       github.Ptr(release.Body),
		Draft:      github.Ptr(false),
		Prerelease: github.Ptr(false),
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create release",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("tag", release.Tag))
	}
	return created.GetID(), nil
}

// UploadReleaseArchive uploads the archive file as a release asset
func (c *client) UploadReleaseArchive(ctx context.Context, owner, repo string, releaseID int64, archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return goerr.Wrap(err, "failed to open archive", goerr.V("path", archivePath))
	}
	defer f.Close()

	_, _, err = c.githubClient.Repositories.UploadReleaseAsset(ctx, owner, repo, releaseID, &github.UploadOptions{
		Name:      filepath.Base(archivePath),
		MediaType: archiveMediaType,
	}, f)
	if err != nil {
		return goerr.Wrap(err, "failed to upload release asset",
			goerr.V("owner", owner), goerr.V("repo", repo),
			goerr.V("release_id", releaseID), goerr.V("path", archivePath))
	}
	return nil
}

// convertRelease maps the API release representation onto the domain model
func convertRelease(rel *github.RepositoryRelease) *model.Release {
	if rel == nil {
		return nil
	}

	release := &model.Release{
		TagName:     rel.GetTagName(),
		Name:        rel.GetName(),
		Body:        rel.GetBody(),
		Author:      rel.GetAuthor().GetLogin(),
		HTMLURL:     rel.GetHTMLURL(),
		Draft:       rel.GetDraft(),
		Prerelease:  rel.GetPrerelease(),
		PublishedAt: rel.GetPublishedAt().Time,
	}
	for _, a := range rel.Assets {
		release.Assets = append(release.Assets, model.Asset{
			ID:          a.GetID(),
			Name:        a.GetName(),
			DownloadURL: a.GetBrowserDownloadURL(),
			Size:        int64(a.GetSize()),
		})
	}
	return release
}
