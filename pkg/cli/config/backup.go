package config

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Backup holds backup pipeline configuration
type Backup struct {
	Repo            string
	Password        string
	TargetsFile     string
	TagAuthorSuffix bool
}

// Flags returns CLI flags for backup configuration
func (c *Backup) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backup-repo",
			Usage:       "Repository receiving encrypted archives (owner/repo)",
			Required:    true,
			Destination: &c.Repo,
			Sources:     cli.EnvVars("RELVAULT_BACKUP_REPO", "BACKUP_REPO", "GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "archive-password",
			Usage:       "Password for the encrypted archives",
			Required:    true,
			Destination: &c.Password,
			Sources:     cli.EnvVars("RELVAULT_ARCHIVE_PASSWORD", "BACKUP_ZIP_PASSWORD"),
		},
		&cli.StringFlag{
			Name:        "targets",
			Usage:       "Path to the targets file (.json, .yaml or .toml)",
			Value:       "targets.json",
			Destination: &c.TargetsFile,
			Sources:     cli.EnvVars("RELVAULT_TARGETS"),
		},
		&cli.BoolFlag{
			Name:        "tag-author-suffix",
			Usage:       "Append -by-{author} to derived backup tags",
			Value:       false,
			Destination: &c.TagAuthorSuffix,
			Sources:     cli.EnvVars("RELVAULT_TAG_AUTHOR_SUFFIX"),
		},
	}
}

// SplitRepo splits the configured backup repository into owner and name
func (c *Backup) SplitRepo() (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(c.Repo, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", goerr.New("backup repository must be in owner/repo form",
			goerr.V("backup_repo", c.Repo))
	}
	return owner, repo, nil
}
