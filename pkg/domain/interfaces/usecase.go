package interfaces

import (
	"context"

	"github.com/m-mizutani/relvault/pkg/domain/model"
)

// BackupUseCase defines the backup pipeline entry point
type BackupUseCase interface {
	// Run processes the targets sequentially and returns one result per
	// target. Per-target failures are recorded in the results, never
	// returned as an error; the run always continues to the next target.
	Run(ctx context.Context, targets []model.Target) []*model.BackupResult
}
