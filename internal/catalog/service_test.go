package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu     sync.Mutex
	calls  map[Kind]int
	data   map[Kind][]Entry
	errFor Kind
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls: make(map[Kind]int),
		data: map[Kind][]Entry{
			KindTaxes:      {{Code: "GST18", RatePercent: 18, Active: true}},
			KindVendors:    {{Code: "V001", Name: "Acme Supplies", Active: true}},
			KindCustomers:  {{Code: "C001", Name: "Globex", Active: true}},
			KindProducts:   {{Code: "P-100", Name: "Widget", Active: true}},
			KindUOMs:       {{Code: "PCS", Name: "Pieces", Active: true}},
			KindWarehouses: {{Code: "WH1", Name: "Main", Active: true}},
		},
	}
}

func (f *fakeFetcher) FetchCatalog(ctx context.Context, kind Kind) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[kind]++
	if kind == f.errFor {
		return nil, ErrUnavailable
	}
	return f.data[kind], nil
}

func (f *fakeFetcher) callCount(kind Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSnapshotFetchesAllKinds(t *testing.T) {
	fetcher := newFakeFetcher()
	svc := NewService(fetcher, NewCache(testRedis(t), time.Minute), nil)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	for _, kind := range AllKinds() {
		assert.True(t, snap.Has(kind), "kind %s", kind)
	}
	e, ok := snap.Lookup(KindVendors, "V001")
	require.True(t, ok)
	assert.Equal(t, "Acme Supplies", e.Name)
}

func TestSnapshotServesSecondCallFromCache(t *testing.T) {
	fetcher := newFakeFetcher()
	svc := NewService(fetcher, NewCache(testRedis(t), time.Minute), nil)

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	_, err = svc.Snapshot(context.Background())
	require.NoError(t, err)

	for _, kind := range AllKinds() {
		assert.Equal(t, 1, fetcher.callCount(kind), "kind %s", kind)
	}
}

func TestSnapshotFailsWhenAnyKindFails(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.errFor = KindTaxes
	svc := NewService(fetcher, NewCache(testRedis(t), time.Minute), nil)

	_, err := svc.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestSnapshotWorksWithoutRedis(t *testing.T) {
	fetcher := newFakeFetcher()
	svc := NewService(fetcher, NewCache(nil, time.Minute), nil)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Has(KindTaxes))
}

func TestRefreshRewritesCache(t *testing.T) {
	fetcher := newFakeFetcher()
	cache := NewCache(testRedis(t), time.Minute)
	svc := NewService(fetcher, cache, nil)

	// Warm the cache, then change upstream data.
	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	fetcher.mu.Lock()
	fetcher.data[KindTaxes] = []Entry{{Code: "GST20", RatePercent: 20, Active: true}}
	fetcher.mu.Unlock()

	// Without a refresh the stale entry is still served.
	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	_, ok := snap.Lookup(KindTaxes, "GST20")
	assert.False(t, ok)

	require.NoError(t, svc.Refresh(context.Background(), []Kind{KindTaxes}))

	snap, err = svc.Snapshot(context.Background())
	require.NoError(t, err)
	_, ok = snap.Lookup(KindTaxes, "GST20")
	assert.True(t, ok)
}
