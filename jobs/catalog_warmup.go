package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian/internal/catalog"
)

// CatalogWarmupJob refreshes the cached reference catalogs so form sessions
// open against data no staler than the refresh interval.
type CatalogWarmupJob struct {
	Catalog *catalog.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewCatalogWarmupJob wires dependencies for the warmup handler.
func NewCatalogWarmupJob(catalogSvc *catalog.Service, logger *slog.Logger) *CatalogWarmupJob {
	return &CatalogWarmupJob{
		Catalog: catalogSvc,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes catalog warmup tasks.
func (j *CatalogWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	var payload CatalogWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	kinds := payload.Kinds
	if len(kinds) == 0 {
		kinds = catalog.AllKinds()
	}

	logger := j.logger().With(slog.Int("kinds", len(kinds)))
	logger.Info("starting catalog warmup")

	start := j.now()
	jobCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if err := j.Catalog.Refresh(jobCtx, kinds); err != nil {
		logger.Error("catalog warmup incomplete", slog.Any("error", err))
		return err
	}

	logger.Info("completed catalog warmup", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *CatalogWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCatalogWarmup))
	}
	return slog.Default().With(slog.String("job", TaskCatalogWarmup))
}

func (j *CatalogWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
