package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian/internal/catalog"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogWarmup refreshes the cached reference catalogs.
	TaskCatalogWarmup = "catalog:warmup"
)

// CatalogWarmupPayload selects the catalog kinds to refresh. An empty list
// refreshes all of them.
type CatalogWarmupPayload struct {
	Kinds []catalog.Kind `json:"kinds,omitempty"`
}

// NewCatalogWarmupTask constructs an Asynq task.
func NewCatalogWarmupTask(payload CatalogWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogWarmup, data), nil
}
