package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relvault/pkg/cli/config"
)

func TestBackup_SplitRepo(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := &config.Backup{Repo: "backup-org/vault"}
		owner, repo, err := cfg.SplitRepo()
		gt.NoError(t, err)
		gt.Value(t, owner).Equal("backup-org")
		gt.Value(t, repo).Equal("vault")
	})

	t.Run("invalid forms", func(t *testing.T) {
		for _, repo := range []string{"", "vault", "/vault", "backup-org/"} {
			cfg := &config.Backup{Repo: repo}
			_, _, err := cfg.SplitRepo()
			gt.Error(t, err)
		}
	})
}
