package usecase

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relvault/pkg/domain/interfaces"
	"github.com/m-mizutani/relvault/pkg/domain/model"
)

// notesFileName is the synthesized notes file placed next to the assets
const notesFileName = "release-notes.txt"

// Config holds the backup pipeline settings
type Config struct {
	// BackupOwner and BackupRepo identify the repository receiving the
	// encrypted archives.
	BackupOwner string
	BackupRepo  string
	// Password encrypts every produced archive
	Password string
	// TagAuthorSuffix appends "-by-{author}" to derived backup tags
	TagAuthorSuffix bool
}

type backupUseCase struct {
	githubClient interfaces.GitHubClient
	archiver     interfaces.Archiver
	cfg          Config

	notesTmpl *template.Template
	bodyTmpl  *template.Template
}

// NewBackup creates a new instance of BackupUseCase
func NewBackup(
	githubClient interfaces.GitHubClient,
	archiver interfaces.Archiver,
	cfg Config,
) (interfaces.BackupUseCase, error) {
	notesTmpl, bodyTmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &backupUseCase{
		githubClient: githubClient,
		archiver:     archiver,
		cfg:          cfg,
		notesTmpl:    notesTmpl,
		bodyTmpl:     bodyTmpl,
	}, nil
}

// Run processes the targets strictly sequentially. A failure in one target
// never aborts the run; the outcome of each target is returned in order.
func (uc *backupUseCase) Run(ctx context.Context, targets []model.Target) []*model.BackupResult {
	logger := ctxlog.From(ctx)

	results := make([]*model.BackupResult, 0, len(targets))
	for _, target := range targets {
		result := uc.processTarget(ctx, target)
		results = append(results, result)

		switch result.Status {
		case model.StatusFailed:
			logger.Error("Target backup failed",
				"target", target.Slug(),
				"backup_tag", result.BackupTag,
				"error", result.Err,
			)
		case model.StatusSkipped:
			logger.Info("Target skipped",
				"target", target.Slug(),
				"backup_tag", result.BackupTag,
			)
		default:
			logger.Info("Target backup completed",
				"target", target.Slug(),
				"backup_tag", result.BackupTag,
				"asset_count", result.AssetCount,
			)
		}
	}

	var done, skipped, failed int
	for _, r := range results {
		switch r.Status {
		case model.StatusDone:
			done++
		case model.StatusSkipped:
			skipped++
		case model.StatusFailed:
			failed++
		}
	}
	logger.Info("All targets processed",
		"total", len(results),
		"done", done,
		"skipped", skipped,
		"failed", failed,
	)

	return results
}

// processTarget runs the per-target state machine:
// PENDING -> FETCHED -> {SKIPPED | COLLECTING -> ARCHIVING -> PUBLISHING -> {DONE | FAILED}}
func (uc *backupUseCase) processTarget(ctx context.Context, target model.Target) *model.BackupResult {
	logger := ctxlog.From(ctx)
	result := &model.BackupResult{
		Target: target,
		Status: model.StatusPending,
	}

	logger.Info("Checking latest release",
		"target", target.Slug(),
		"allow_prerelease", target.AllowPrerelease,
	)

	release, err := uc.latestRelease(ctx, target)
	if err != nil {
		result.Status = model.StatusFailed
		result.Err = err
		return result
	}
	if release == nil {
		logger.Info("No qualifying release found", "target", target.Slug())
		result.Status = model.StatusSkipped
		return result
	}
	result.Status = model.StatusFetched
	result.OriginalTag = release.TagName

	author := ""
	if uc.cfg.TagAuthorSuffix {
		author = release.Author
	}
	version := model.NormalizeVersion(release.TagName)
	backupTag := model.NewBackupTag(target.Owner, target.Repo, version, author)
	result.BackupTag = backupTag

	if uc.alreadyBackedUp(ctx, backupTag) {
		logger.Info("Release already backed up",
			"target", target.Slug(),
			"backup_tag", backupTag,
		)
		result.Status = model.StatusSkipped
		return result
	}

	logger.Info("Found new release",
		"target", target.Slug(),
		"original_tag", release.TagName,
		"backup_tag", backupTag,
		"asset_count", len(release.Assets),
	)

	scratchDir, err := os.MkdirTemp("", "relvault-*")
	if err != nil {
		result.Status = model.StatusFailed
		result.Err = goerr.Wrap(err, "failed to create scratch directory")
		return result
	}
	if err := os.Chmod(scratchDir, 0700); err != nil {
		result.Status = model.StatusFailed
		result.Err = goerr.Wrap(err, "failed to set scratch directory permissions",
			goerr.V("scratch_dir", scratchDir))
		return result
	}
	defer func() {
		if err := os.RemoveAll(scratchDir); err != nil {
			logger.Warn("Failed to clean up scratch directory",
				"scratch_dir", scratchDir,
				"error", err,
			)
		}
	}()

	result.Status = model.StatusCollecting
	contentDir := filepath.Join(scratchDir, "content")
	if err := os.MkdirAll(contentDir, 0700); err != nil {
		result.Status = model.StatusFailed
		result.Err = goerr.Wrap(err, "failed to create content directory",
			goerr.V("content_dir", contentDir))
		return result
	}

	collected := uc.collectAssets(ctx, target, release, contentDir)
	result.AssetCount = collected

	if err := uc.writeNotes(target, release, collected, contentDir); err != nil {
		result.Status = model.StatusFailed
		result.Err = err
		return result
	}

	result.Status = model.StatusArchiving
	archivePath := filepath.Join(scratchDir, backupTag+".7z")
	if err := uc.archiver.Create(ctx, contentDir, archivePath, uc.cfg.Password); err != nil {
		result.Status = model.StatusFailed
		result.Err = goerr.Wrap(err, "failed to create archive", goerr.V("target", target.Slug()))
		return result
	}

	result.Status = model.StatusPublishing
	if err := uc.publish(ctx, target, release, backupTag, collected, archivePath); err != nil {
		result.Status = model.StatusFailed
		result.Err = err
		return result
	}

	result.Status = model.StatusDone
	return result
}

// latestRelease resolves the most recent qualifying release for the target.
// When prereleases are disallowed the dedicated "latest" endpoint is tried
// first; a miss there, or an allowed-prerelease target, falls back to
// scanning the full release list. Drafts never qualify. Returns (nil, nil)
// when no release qualifies.
func (uc *backupUseCase) latestRelease(ctx context.Context, target model.Target) (*model.Release, error) {
	if !target.AllowPrerelease {
		release, err := uc.githubClient.LatestStableRelease(ctx, target.Owner, target.Repo)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch latest release", goerr.V("target", target.Slug()))
		}
		if release != nil {
			return release, nil
		}
		// fall through to the listing scan
	}

	releases, err := uc.githubClient.ListReleases(ctx, target.Owner, target.Repo)
	if err != nil {
		// Non-success on the listing call means "no release found"; the
		// caller logs and moves on, no retry.
		ctxlog.From(ctx).Warn("Failed to list releases",
			"target", target.Slug(),
			"error", err,
		)
		return nil, nil
	}

	for _, release := range releases {
		if release.Draft {
			continue
		}
		if release.Prerelease && !target.AllowPrerelease {
			continue
		}
		return release, nil
	}
	return nil, nil
}

// alreadyBackedUp checks the backup repository's tag namespace, the sole
// idempotency ledger. Only a confirmed hit counts; lookup errors are treated
// as a miss.
func (uc *backupUseCase) alreadyBackedUp(ctx context.Context, backupTag string) bool {
	release, err := uc.githubClient.ReleaseByTag(ctx, uc.cfg.BackupOwner, uc.cfg.BackupRepo, backupTag)
	if err != nil {
		ctxlog.From(ctx).Warn("Failed to check backup repository for existing tag",
			"backup_tag", backupTag,
			"error", err,
		)
		return false
	}
	return release != nil
}

// collectAssets downloads every asset of the release into destDir and
// returns the number of successful downloads. Individual failures are
// logged and the asset is omitted; they never abort the target.
func (uc *backupUseCase) collectAssets(ctx context.Context, target model.Target, release *model.Release, destDir string) int {
	logger := ctxlog.From(ctx)

	collected := 0
	for _, asset := range release.Assets {
		if asset.DownloadURL == "" && asset.ID == 0 {
			logger.Warn("Asset has no download URL, skipping",
				"target", target.Slug(),
				"asset", asset.Name,
			)
			continue
		}

		if err := uc.downloadAsset(ctx, target, asset, destDir); err != nil {
			logger.Warn("Failed to download asset, omitting from archive",
				"target", target.Slug(),
				"asset", asset.Name,
				"error", err,
			)
			continue
		}

		logger.Debug("Downloaded asset",
			"target", target.Slug(),
			"asset", asset.Name,
			"size", asset.Size,
		)
		collected++
	}
	return collected
}

// downloadAsset streams one asset into destDir, preserving the asset's file
// name. The content goes to a temporary file first and is renamed into
// place, so a failed download never leaves a partial file behind.
func (uc *backupUseCase) downloadAsset(ctx context.Context, target model.Target, asset model.Asset, destDir string) error {
	rc, err := uc.githubClient.DownloadAsset(ctx, target.Owner, target.Repo, asset)
	if err != nil {
		return err
	}
	defer rc.Close()

	name := filepath.Base(asset.Name)
	if name == "." || name == string(os.PathSeparator) {
		name = "unnamed"
	}
	destPath := filepath.Join(destDir, name)

	tmp, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary file", goerr.V("dest", destPath))
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, rc); err != nil {
		return goerr.Wrap(err, "failed to write asset content", goerr.V("dest", destPath))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temporary file", goerr.V("dest", destPath))
	}
	if err := os.Rename(tmpName, destPath); err != nil {
		return goerr.Wrap(err, "failed to move asset into place", goerr.V("dest", destPath))
	}
	return nil
}

// writeNotes synthesizes the release notes file in destDir. The file is
// always present in the archive, even for releases without assets or body.
func (uc *backupUseCase) writeNotes(target model.Target, release *model.Release, assetCount int, destDir string) error {
	notes, err := render(uc.notesTmpl, newReleaseDoc(target, release, assetCount))
	if err != nil {
		return err
	}

	notesPath := filepath.Join(destDir, notesFileName)
	if err := os.WriteFile(notesPath, []byte(notes), 0600); err != nil {
		return goerr.Wrap(err, "failed to write release notes file", goerr.V("path", notesPath))
	}
	return nil
}

// publish creates the backup release and uploads the archive as its sole
// asset. A creation failure aborts before any upload; an upload failure
// leaves the created release in place.
func (uc *backupUseCase) publish(ctx context.Context, target model.Target, release *model.Release, backupTag string, assetCount int, archivePath string) error {
	body, err := render(uc.bodyTmpl, newReleaseDoc(target, release, assetCount))
	if err != nil {
		return err
	}

	releaseID, err := uc.githubClient.CreateRelease(ctx, uc.cfg.BackupOwner, uc.cfg.BackupRepo, &model.BackupRelease{
		Tag:  backupTag,
		Name: backupTag,
		Body: body,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create backup release",
			goerr.V("backup_tag", backupTag))
	}

	if err := uc.githubClient.UploadReleaseArchive(ctx, uc.cfg.BackupOwner, uc.cfg.BackupRepo, releaseID, archivePath); err != nil {
		// The release entry stays; a re-run will see the tag and skip.
		return goerr.Wrap(err, "failed to upload archive to backup release",
			goerr.V("backup_tag", backupTag),
			goerr.V("release_id", releaseID))
	}
	return nil
}
