package app

import (
	"context"
	"fmt"
	"time"

	"github.com/content-prism/prism-core/internal/models"
	pkgcron "github.com/content-prism/prism-core/internal/pkg/cron"
	pkgredis "github.com/content-prism/prism-core/internal/pkg/redis"
	"github.com/content-prism/prism-core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, rc *pkgredis.Client, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")
	taskSvc := taskqueue.NewService(rc)

	sched.Register(pkgcron.Job{
		Name:        "purge_sessions",
		Description: "Remove expired and revoked login sessions",
		Interval:    12 * time.Hour,
		Fn: func(ctx context.Context) error {
			result := db.WithContext(ctx).
				Where("expires_at < ? OR revoked_at IS NOT NULL", time.Now()).
				Delete(&models.UserSession{})
			if result.Error != nil {
				cronLogger.Warn("session purge failed", zap.Error(result.Error))
				return result.Error
			}
			cronLogger.Info(fmt.Sprintf("purged %d stale sessions", result.RowsAffected))
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "cleanup_tasks",
		Description: "Remove finished generation tasks older than 7 days",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -7).UnixMilli()
			if err := taskSvc.DeleteCompleted(ctx, cutoff); err != nil {
				cronLogger.Warn("task cleanup failed", zap.Error(err))
				return err
			}
			cronLogger.Info("finished task cleanup")
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "cleanup_pending_assets",
		Description: "Remove asset records that never finished uploading",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().Add(-24 * time.Hour)
			result := db.WithContext(ctx).
				Where("status = ? AND created_at < ?", "pending", cutoff).
				Delete(&models.AssetModel{})
			if result.Error != nil {
				cronLogger.Warn("pending asset cleanup failed", zap.Error(result.Error))
				return result.Error
			}
			if result.RowsAffected > 0 {
				cronLogger.Info(fmt.Sprintf("removed %d stuck pending assets", result.RowsAffected))
			}
			return nil
		},
	})
}
