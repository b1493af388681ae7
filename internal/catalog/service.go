package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Service assembles reference catalog snapshots for form sessions. Each kind
// is served from the Redis cache when warm and fetched from the master-data
// service otherwise; all kinds are loaded concurrently.
type Service struct {
	fetcher Fetcher
	cache   *Cache
	logger  *slog.Logger
}

// NewService constructs the catalog service.
func NewService(fetcher Fetcher, cache *Cache, logger *slog.Logger) *Service {
	return &Service{fetcher: fetcher, cache: cache, logger: logger}
}

// Snapshot fetches every catalog kind and freezes the result for one editing
// session. Any kind failing to load fails the whole snapshot; a form must not
// open against partial reference data.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	kinds := AllKinds()
	results := make([][]Entry, len(kinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			var entries []Entry
			err := s.cache.FetchJSON(ctx, snapshotKey(kind), &entries, func(ctx context.Context) (interface{}, error) {
				return s.fetcher.FetchCatalog(ctx, kind)
			})
			if err != nil {
				return fmt.Errorf("catalog: load %s: %w", kind, err)
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make(map[Kind][]Entry, len(kinds))
	for i, kind := range kinds {
		entries[kind] = results[i]
	}
	return NewSnapshot(entries), nil
}

// Refresh bypasses the cache and rewrites the cached entry lists for the
// given kinds. Used by the warmup job; individual kind failures are logged
// and skipped so one flaky table does not starve the rest of the cache.
func (s *Service) Refresh(ctx context.Context, kinds []Kind) error {
	if len(kinds) == 0 {
		kinds = AllKinds()
	}
	var lastErr error
	for _, kind := range kinds {
		entries, err := s.fetcher.FetchCatalog(ctx, kind)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("catalog refresh skipped", slog.String("kind", string(kind)), slog.Any("error", err))
			}
			lastErr = err
			continue
		}
		if err := s.cache.Put(ctx, snapshotKey(kind), entries); err != nil {
			if s.logger != nil {
				s.logger.Warn("catalog cache write failed", slog.String("kind", string(kind)), slog.Any("error", err))
			}
			lastErr = err
		}
	}
	return lastErr
}
