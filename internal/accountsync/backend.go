package accountsync

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/flavr/backend/config"
)

// FromConfig returns the snapshot store selected by cfg.SyncBackend. A nil
// store means sync is disabled.
func FromConfig(ctx context.Context, cfg *config.Config, db *gorm.DB) (SnapshotStore, error) {
	switch cfg.SyncBackend {
	case config.SyncS3:
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(s3cfg), nil
	case config.SyncGorm:
		if db == nil {
			return nil, fmt.Errorf("accountsync: gorm backend selected without a database")
		}
		return NewGormStore(db), nil
	case config.SyncNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("accountsync: unknown backend %q", cfg.SyncBackend)
	}
}
