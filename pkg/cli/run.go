package cli

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relvault/pkg/cli/config"
	"github.com/m-mizutani/relvault/pkg/domain/model"
	"github.com/m-mizutani/relvault/pkg/infra/archive"
	"github.com/m-mizutani/relvault/pkg/infra/github"
	"github.com/m-mizutani/relvault/pkg/infra/targets"
	"github.com/m-mizutani/relvault/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var (
		githubCfg config.GitHub
		backupCfg config.Backup
		sentryCfg config.Sentry
	)

	flags := append(githubCfg.Flags(), backupCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Back up the latest release of every configured target",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			runID := uuid.NewString()
			logger := ctxlog.From(ctx).With("run_id", runID)
			ctx = ctxlog.With(ctx, logger)

			backupOwner, backupRepo, err := backupCfg.SplitRepo()
			if err != nil {
				return err
			}

			sentryEnabled, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			if sentryEnabled {
				defer sentry.Flush(2 * time.Second)
			}

			logger.Info("Starting backup run",
				"backup_repo", backupCfg.Repo,
				"targets_file", backupCfg.TargetsFile,
			)

			targetList, err := targets.Load(ctx, backupCfg.TargetsFile)
			if err != nil {
				return goerr.Wrap(err, "failed to load targets")
			}
			if len(targetList) == 0 {
				logger.Warn("No valid targets configured", "targets_file", backupCfg.TargetsFile)
				return nil
			}

			backupUC, err := usecase.NewBackup(
				github.NewClient(githubCfg.Token),
				archive.NewSevenZip(),
				usecase.Config{
					BackupOwner:     backupOwner,
					BackupRepo:      backupRepo,
					Password:        backupCfg.Password,
					TagAuthorSuffix: backupCfg.TagAuthorSuffix,
				},
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create backup use case")
			}

			results := backupUC.Run(ctx, targetList)

			// Per-target failures are surfaced through logs and Sentry
			// only; the process exit code reflects configuration-level
			// failures alone.
			if sentryEnabled {
				for _, result := range results {
					if result.Status == model.StatusFailed && result.Err != nil {
						sentry.WithScope(func(scope *sentry.Scope) {
							scope.SetTag("target", result.Target.Slug())
							scope.SetTag("run_id", runID)
							sentry.CaptureException(result.Err)
						})
					}
				}
			}

			return nil
		},
	}
}
